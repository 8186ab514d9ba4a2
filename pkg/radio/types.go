package radio

import "errors"

// Subsystem errors.
var (
	ErrPublisherClosed = errors.New("publisher closed")
	ErrListenerClosed  = errors.New("connection listener closed")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrInvalidState    = errors.New("invalid publisher state")
)

// PublisherStatus is the status of an advertisement publisher.
type PublisherStatus uint8

const (
	// StatusCreated - publisher configured but not started.
	StatusCreated PublisherStatus = iota

	// StatusStarted - the network is being advertised.
	StatusStarted

	// StatusStopped - advertisement stopped on request.
	StatusStopped

	// StatusAborted - the subsystem gave up advertising.
	StatusAborted
)

// String returns the status name.
func (s PublisherStatus) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusStarted:
		return "Started"
	case StatusStopped:
		return "Stopped"
	case StatusAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// ErrorCode explains why the subsystem aborted an advertisement.
type ErrorCode uint8

const (
	ErrorNone ErrorCode = iota
	ErrorRadioNotAvailable
	ErrorResourceInUse
	ErrorNotSupported
	ErrorUnknown
)

// String returns the error code name.
func (e ErrorCode) String() string {
	switch e {
	case ErrorNone:
		return "None"
	case ErrorRadioNotAvailable:
		return "RadioNotAvailable"
	case ErrorResourceInUse:
		return "ResourceInUse"
	case ErrorNotSupported:
		return "NotSupported"
	default:
		return "Unknown"
	}
}

// StatusEvent is delivered to publisher status observers.
type StatusEvent struct {
	Status PublisherStatus

	// Error is set when Status is StatusAborted.
	Error ErrorCode
}

// Discoverability controls how visible the device is while listening.
type Discoverability uint8

const (
	DiscoverabilityNone Discoverability = iota
	DiscoverabilityNormal
	DiscoverabilityIntensive
)

// String returns the discoverability name.
func (d Discoverability) String() string {
	switch d {
	case DiscoverabilityNone:
		return "None"
	case DiscoverabilityNormal:
		return "Normal"
	case DiscoverabilityIntensive:
		return "Intensive"
	default:
		return "Unknown"
	}
}

// LegacySettings configure password based access for peers that do not speak
// the native peer-to-peer protocol.
type LegacySettings struct {
	Enabled    bool
	SSID       string
	Passphrase string
}

// Advertisement holds the publisher settings.
type Advertisement struct {
	// AutonomousGroupOwnerEnabled makes this device act as an access point.
	// Required for legacy settings to take effect.
	AutonomousGroupOwnerEnabled bool

	ListenStateDiscoverability Discoverability

	Legacy LegacySettings
}

// ConnectionStatus is the link state of a peer device.
type ConnectionStatus uint8

const (
	Disconnected ConnectionStatus = iota
	Connected
)

// String returns the connection status name.
func (s ConnectionStatus) String() string {
	switch s {
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// EndpointPair describes one side of a peer's network connection.
type EndpointPair struct {
	LocalHostName     string
	LocalServiceName  string
	RemoteHostName    string
	RemoteServiceName string
}
