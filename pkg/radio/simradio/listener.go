package simradio

import (
	"sync"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

type request struct {
	radio *Radio
	id    string
	name  string
	host  string
}

func (q *request) DeviceID() string   { return q.id }
func (q *request) DeviceName() string { return q.name }
func (q *request) Decline()           { q.radio.decline(q.id, q) }

type listener struct {
	radio *Radio

	handlers handlers[func(radio.ConnectionRequest)]
	events   *queue

	closeOnce sync.Once
}

func (l *listener) OnConnectionRequested(fn func(radio.ConnectionRequest)) (unsubscribe func()) {
	return l.handlers.add(fn)
}

func (l *listener) Close() error {
	l.closeOnce.Do(func() {
		l.radio.removeListener(l)
		l.handlers.clear()
	})
	return nil
}

func (l *listener) deliver(req *request) {
	l.events.submit(func() {
		for _, fn := range l.handlers.snapshot() {
			fn(req)
		}
	})
}

var (
	_ radio.ConnectionListener = (*listener)(nil)
	_ radio.ConnectionRequest  = (*request)(nil)
)
