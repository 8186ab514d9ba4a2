package hostednet

// Listener receives lifecycle and connection notifications. Calls arrive on
// subsystem goroutines and may be concurrent.
type Listener interface {
	// OnDeviceConnected reports a registered peer by its remote host name.
	OnDeviceConnected(remoteHostName string)

	// OnDeviceDisconnected reports a peer that left, by device id.
	OnDeviceDisconnected(deviceID string)

	OnAdvertisementStarted()
	OnAdvertisementStopped(message string)
	OnAdvertisementAborted(message string)

	// OnAsyncException reports a failure inside an event handler.
	OnAsyncException(message string)

	// LogMessage carries informational progress messages.
	LogMessage(message string)
}

// Prompt decides inbound join requests when AutoAccept is off. The call may
// block for as long as it takes to get an answer.
type Prompt interface {
	AcceptIncomingConnection() bool
}

// PromptFunc adapts a function to the Prompt interface.
type PromptFunc func() bool

// AcceptIncomingConnection calls f.
func (f PromptFunc) AcceptIncomingConnection() bool { return f() }

// NoopListener ignores every notification. Embed it to implement only some
// of the callbacks.
type NoopListener struct{}

func (NoopListener) OnDeviceConnected(string)      {}
func (NoopListener) OnDeviceDisconnected(string)   {}
func (NoopListener) OnAdvertisementStarted()       {}
func (NoopListener) OnAdvertisementStopped(string) {}
func (NoopListener) OnAdvertisementAborted(string) {}
func (NoopListener) OnAsyncException(string)       {}
func (NoopListener) LogMessage(string)             {}

var _ Listener = NoopListener{}
