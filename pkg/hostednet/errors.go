package hostednet

import (
	"errors"
	"fmt"

	"github.com/hostednet/hostednet-go/pkg/peer"
	"github.com/hostednet/hostednet-go/pkg/radio"
)

// Controller errors.
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrBadStatus       = errors.New("advertisement status is null or bad status")
	ErrNoEndpointPairs = errors.New("resolved device has no endpoint pairs")
	ErrClosed          = errors.New("controller closed")
)

// Notification texts.
const (
	msgListenerReady       = "Connection Listener is ready"
	msgRequested           = "Connection Requested..."
	msgDeclined            = "Declined"
	msgStopped             = "Advertisement stopped"
	msgBadStatus           = "Advertisement status is null or bad status"
	msgAbortRadioOff       = "Advertisement aborted, radio turned off"
	msgAbortResourceBusy   = "Advertisement aborted, resource in use"
	msgAbortUnknown        = "Advertisement aborted, unknown reason"
	msgDroppedAfterReset   = "Connection dropped, network was reset"
	msgDroppedDisconnected = "Connection dropped, peer disconnected"
)

// ErrorKind classifies failures reported through OnAsyncException.
type ErrorKind uint8

const (
	// KindUnexpected - any other fault, including recovered panics.
	KindUnexpected ErrorKind = iota

	// KindConfiguration - invalid configuration or a Stop in a bad state.
	KindConfiguration

	// KindSubsystemAbort - the subsystem aborted the advertisement.
	KindSubsystemAbort

	// KindResolution - an accepted request could not be resolved.
	KindResolution

	// KindRegistryConflict - a device id was already registered.
	KindRegistryConflict
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindUnexpected:
		return "UNEXPECTED"
	case KindConfiguration:
		return "CONFIGURATION"
	case KindSubsystemAbort:
		return "SUBSYSTEM_ABORT"
	case KindResolution:
		return "RESOLUTION"
	case KindRegistryConflict:
		return "REGISTRY_CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// AbortError is the reason the subsystem aborted an advertisement.
type AbortError struct {
	Code radio.ErrorCode
}

func (e *AbortError) Error() string {
	switch e.Code {
	case radio.ErrorRadioNotAvailable:
		return msgAbortRadioOff
	case radio.ErrorResourceInUse:
		return msgAbortResourceBusy
	default:
		return msgAbortUnknown
	}
}

// AsyncError is a failure that occurred while handling a subsystem event.
type AsyncError struct {
	Kind ErrorKind

	// Op names the operation that failed (e.g. "resolve").
	Op string

	// DeviceID is set for failures tied to one peer.
	DeviceID string

	Err error
}

func (e *AsyncError) Error() string {
	if e.DeviceID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.DeviceID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AsyncError) Unwrap() error { return e.Err }

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	var async *AsyncError
	if errors.As(err, &async) {
		return async.Kind
	}
	var abort *AbortError
	switch {
	case errors.As(err, &abort):
		return KindSubsystemAbort
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrBadStatus):
		return KindConfiguration
	case errors.Is(err, ErrNoEndpointPairs):
		return KindResolution
	case errors.Is(err, peer.ErrDuplicateDevice):
		return KindRegistryConflict
	default:
		return KindUnexpected
	}
}

// asAsync returns err as an *AsyncError, wrapping it when needed.
func asAsync(op string, err error) *AsyncError {
	var async *AsyncError
	if errors.As(err, &async) {
		return async
	}
	return &AsyncError{Kind: KindOf(err), Op: op, Err: err}
}
