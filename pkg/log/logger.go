package log

// Logger receives lifecycle events.
// Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records an event. Implementations must be thread-safe and must not
	// block for long: the controller calls Log from event handlers.
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
