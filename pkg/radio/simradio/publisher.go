package simradio

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

// ErrInvalidAdvertisement is returned for settings the radio cannot apply.
var ErrInvalidAdvertisement = errors.New("invalid advertisement settings")

// Publisher is a simulated advertisement publisher.
type Publisher struct {
	radio *Radio

	mu     sync.Mutex
	adv    radio.Advertisement
	status radio.PublisherStatus
	psk    []byte

	handlers handlers[func(radio.StatusEvent)]
	events   *queue
}

// Advertisement returns a copy of the current settings.
func (p *Publisher) Advertisement() radio.Advertisement {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adv
}

// ApplyAdvertisement replaces the settings before the publisher starts.
func (p *Publisher) ApplyAdvertisement(adv radio.Advertisement) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != radio.StatusCreated {
		return fmt.Errorf("%w: apply in %s", radio.ErrInvalidState, p.status)
	}
	if adv.Legacy.Enabled && !adv.AutonomousGroupOwnerEnabled {
		return fmt.Errorf("%w: legacy settings require autonomous group owner", ErrInvalidAdvertisement)
	}
	if adv.Legacy.Enabled && (adv.Legacy.SSID == "" || adv.Legacy.Passphrase == "") {
		return fmt.Errorf("%w: legacy settings need ssid and passphrase", ErrInvalidAdvertisement)
	}
	p.adv = adv
	return nil
}

// Status returns the current publisher status.
func (p *Publisher) Status() radio.PublisherStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Start requests the advertisement. The outcome arrives as a status event:
// Started, or Aborted when the radio is off or another publisher is active.
func (p *Publisher) Start() error {
	r := p.radio
	r.mu.Lock()
	defer r.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == radio.StatusStarted {
		return fmt.Errorf("%w: start in %s", radio.ErrInvalidState, p.status)
	}

	switch {
	case !r.enabled:
		p.setStatusLocked(radio.StatusAborted, radio.ErrorRadioNotAvailable)
	case r.active != nil && r.active != p:
		p.setStatusLocked(radio.StatusAborted, radio.ErrorResourceInUse)
	default:
		r.active = p
		if p.adv.Legacy.Enabled {
			p.psk = PSK(p.adv.Legacy.Passphrase, p.adv.Legacy.SSID)
		}
		p.setStatusLocked(radio.StatusStarted, radio.ErrorNone)
	}
	r.debugLog("publisher start", "status", p.status, "ssid", p.adv.Legacy.SSID)
	return nil
}

// Stop requests the advertisement to stop.
func (p *Publisher) Stop() error {
	r := p.radio
	r.mu.Lock()
	defer r.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != radio.StatusStarted && p.status != radio.StatusCreated {
		return fmt.Errorf("%w: stop in %s", radio.ErrInvalidState, p.status)
	}
	if r.active == p {
		r.active = nil
	}
	r.stopRequests++
	p.setStatusLocked(radio.StatusStopped, radio.ErrorNone)
	return nil
}

// OnStatusChanged registers fn for status events.
func (p *Publisher) OnStatusChanged(fn func(radio.StatusEvent)) (unsubscribe func()) {
	return p.handlers.add(fn)
}

// abort moves a live publisher to StatusAborted.
func (p *Publisher) abort(code radio.ErrorCode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != radio.StatusStarted && p.status != radio.StatusCreated {
		return
	}
	p.setStatusLocked(radio.StatusAborted, code)
}

// verify checks a legacy passphrase against the started advertisement.
func (p *Publisher) verify(passphrase string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.adv.Legacy.Enabled || p.psk == nil {
		return fmt.Errorf("%w: legacy access disabled", ErrAuthFailed)
	}
	if subtle.ConstantTimeCompare(p.psk, PSK(passphrase, p.adv.Legacy.SSID)) != 1 {
		return ErrAuthFailed
	}
	return nil
}

func (p *Publisher) setStatusLocked(status radio.PublisherStatus, code radio.ErrorCode) {
	p.status = status
	event := radio.StatusEvent{Status: status, Error: code}
	p.events.submit(func() {
		for _, fn := range p.handlers.snapshot() {
			fn(event)
		}
	})
}

var _ radio.Publisher = (*Publisher)(nil)
