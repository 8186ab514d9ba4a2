package log

import "time"

// Event is a captured lifecycle event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies one advertisement run (a UUID assigned at Start).
	// Empty before the first Start.
	RunID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// Source is the component that produced the event.
	Source Source `cbor:"4,keyasint"`

	// DeviceID is set for peer related events.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// SSID of the hosted network when known.
	SSID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Notification *NotificationEvent `cbor:"7,keyasint,omitempty"`
	StateChange  *StateChangeEvent  `cbor:"8,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	CategoryLifecycle Category = 0
	CategoryPeer      Category = 1
	CategoryMessage   Category = 2
	CategoryError     Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryPeer:
		return "PEER"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Source is the component that produced an event.
type Source uint8

const (
	SourceController Source = 0
	SourceGatekeeper Source = 1
	SourceSubsystem  Source = 2
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceController:
		return "CONTROLLER"
	case SourceGatekeeper:
		return "GATEKEEPER"
	case SourceSubsystem:
		return "SUBSYSTEM"
	default:
		return "UNKNOWN"
	}
}

// NotificationType mirrors the listener callbacks.
type NotificationType uint8

const (
	NotificationDeviceConnected      NotificationType = 0
	NotificationDeviceDisconnected   NotificationType = 1
	NotificationAdvertisementStarted NotificationType = 2
	NotificationAdvertisementStopped NotificationType = 3
	NotificationAdvertisementAborted NotificationType = 4
	NotificationAsyncException       NotificationType = 5
	NotificationLogMessage           NotificationType = 6
)

// String returns the notification type name.
func (n NotificationType) String() string {
	switch n {
	case NotificationDeviceConnected:
		return "DEVICE_CONNECTED"
	case NotificationDeviceDisconnected:
		return "DEVICE_DISCONNECTED"
	case NotificationAdvertisementStarted:
		return "ADVERTISEMENT_STARTED"
	case NotificationAdvertisementStopped:
		return "ADVERTISEMENT_STOPPED"
	case NotificationAdvertisementAborted:
		return "ADVERTISEMENT_ABORTED"
	case NotificationAsyncException:
		return "ASYNC_EXCEPTION"
	case NotificationLogMessage:
		return "LOG_MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// NotificationEvent records a notification delivered to the listener.
type NotificationEvent struct {
	Type NotificationType `cbor:"1,keyasint"`

	// Message is the notification argument (host name, device ID or text).
	Message string `cbor:"2,keyasint,omitempty"`
}

// StateChangeEvent captures advertisement and peer state transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	StateEntityAdvertisement StateEntity = 0
	StateEntityPeer          StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityAdvertisement:
		return "ADVERTISEMENT"
	case StateEntityPeer:
		return "PEER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an asynchronous failure.
type ErrorEventData struct {
	// Kind is the error classification (e.g. "RESOLUTION").
	Kind string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Op describes what operation was being performed.
	Op string `cbor:"3,keyasint,omitempty"`
}
