package radio

import "context"

// Subsystem is the radio stack that performs broadcasting and link
// negotiation.
type Subsystem interface {
	// NewPublisher creates a publisher in StatusCreated with subsystem
	// generated default legacy settings.
	NewPublisher() (Publisher, error)

	// NewConnectionListener creates a listener for inbound join requests.
	NewConnectionListener() (ConnectionListener, error)

	// Resolve turns a requesting device id into a device session. It blocks
	// until the subsystem has negotiated the link or ctx is done.
	Resolve(ctx context.Context, deviceID string) (Device, error)
}

// Publisher advertises the hosted network.
type Publisher interface {
	// Advertisement returns a copy of the current settings.
	Advertisement() Advertisement

	// ApplyAdvertisement replaces the settings. Only valid in StatusCreated.
	ApplyAdvertisement(adv Advertisement) error

	// Status returns the current publisher status.
	Status() PublisherStatus

	// Start requests the advertisement to start. The outcome is reported
	// through OnStatusChanged.
	Start() error

	// Stop requests the advertisement to stop. The outcome is reported
	// through OnStatusChanged.
	Stop() error

	// OnStatusChanged registers fn for status events.
	OnStatusChanged(fn func(StatusEvent)) (unsubscribe func())
}

// ConnectionRequest is an inbound join attempt.
type ConnectionRequest interface {
	// DeviceID identifies the requesting device.
	DeviceID() string

	// DeviceName is the human readable name the device announced.
	DeviceName() string

	// Decline rejects the request on the subsystem side.
	Decline()
}

// ConnectionListener delivers inbound join requests.
type ConnectionListener interface {
	// OnConnectionRequested registers fn for join requests.
	OnConnectionRequested(fn func(ConnectionRequest)) (unsubscribe func())

	// Close stops delivering requests and releases the listener.
	Close() error
}

// Device is a resolved peer session.
type Device interface {
	DeviceID() string
	ConnectionStatus() ConnectionStatus

	// EndpointPairs lists the connection endpoints. The first pair carries
	// the address assigned to the peer.
	EndpointPairs() []EndpointPair

	// OnConnectionStatusChanged registers fn for link state changes.
	OnConnectionStatusChanged(fn func(Device, ConnectionStatus)) (unsubscribe func())

	// Close releases the device session.
	Close() error
}
