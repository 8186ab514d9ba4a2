package hostednet

import (
	"log/slog"

	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/log"
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	listener  Listener
	prompt    Prompt
	logger    *slog.Logger
	events    log.Logger
	announcer discovery.Announcer
}

// WithListener registers the notification listener.
func WithListener(l Listener) Option {
	return func(o *options) { o.listener = l }
}

// WithPrompt registers the prompt consulted when AutoAccept is off.
func WithPrompt(p Prompt) Option {
	return func(o *options) { o.prompt = p }
}

// WithLogger sets the operational logger. If nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEventLogger captures every notification and state change as a
// log.Event.
func WithEventLogger(events log.Logger) Option {
	return func(o *options) { o.events = events }
}

// WithAnnouncer announces the running network over mDNS.
func WithAnnouncer(a discovery.Announcer) Option {
	return func(o *options) { o.announcer = a }
}
