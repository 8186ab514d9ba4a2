package simradio

import (
	"fmt"
	"sync"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

// Device is a resolved peer session.
type Device struct {
	radio *Radio
	id    string
	pairs []radio.EndpointPair

	mu     sync.Mutex
	status radio.ConnectionStatus
	closed bool

	handlers handlers[func(radio.Device, radio.ConnectionStatus)]
	events   *queue
}

func (d *Device) DeviceID() string { return d.id }

func (d *Device) ConnectionStatus() radio.ConnectionStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// EndpointPairs returns a copy of the device's endpoint pairs.
func (d *Device) EndpointPairs() []radio.EndpointPair {
	if len(d.pairs) == 0 {
		return nil
	}
	out := make([]radio.EndpointPair, len(d.pairs))
	copy(out, d.pairs)
	return out
}

func (d *Device) OnConnectionStatusChanged(fn func(radio.Device, radio.ConnectionStatus)) (unsubscribe func()) {
	return d.handlers.add(fn)
}

// Close releases the session. A closed device no longer counts as connected
// and delivers no further events.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.handlers.clear()
	d.radio.forget(d)
	return nil
}

func (d *Device) disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == radio.Disconnected {
		return fmt.Errorf("%w: %s already disconnected", radio.ErrInvalidState, d.id)
	}
	d.status = radio.Disconnected
	d.events.submit(func() {
		for _, fn := range d.handlers.snapshot() {
			fn(d, radio.Disconnected)
		}
	})
	return nil
}

var _ radio.Device = (*Device)(nil)
