package hostednet

// State is the advertisement state of a Controller.
type State uint8

const (
	// StateIdle - nothing started, or reset.
	StateIdle State = iota

	// StateStarting - the subsystem accepted the start request.
	StateStarting

	// StateStarted - the network is advertised and join requests are handled.
	StateStarted

	// StateStopping - a stop was requested.
	StateStopping

	// StateStopped - the subsystem stopped the advertisement.
	StateStopped

	// StateAborted - the subsystem gave up; see Controller.StateReason.
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateStarted:
		return "STARTED"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// stoppable reports whether Stop may issue a subsystem stop in this state.
func (s State) stoppable() bool {
	return s == StateStarting || s == StateStarted
}
