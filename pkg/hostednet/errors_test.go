package hostednet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hostednet/hostednet-go/pkg/peer"
	"github.com/hostednet/hostednet-go/pkg/radio"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"bad status", fmt.Errorf("%w: state IDLE", ErrBadStatus), KindConfiguration},
		{"invalid config", fmt.Errorf("%w: ssid", ErrInvalidConfig), KindConfiguration},
		{"abort", &AbortError{Code: radio.ErrorResourceInUse}, KindSubsystemAbort},
		{"no endpoints", ErrNoEndpointPairs, KindResolution},
		{"duplicate", fmt.Errorf("%w: AA", peer.ErrDuplicateDevice), KindRegistryConflict},
		{"other", errors.New("boom"), KindUnexpected},
		{"async wins", &AsyncError{Kind: KindResolution, Err: errors.New("timeout")}, KindResolution},
		{"wrapped async", fmt.Errorf("outer: %w", &AsyncError{Kind: KindRegistryConflict, Err: errors.New("x")}), KindRegistryConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAbortError_Messages(t *testing.T) {
	tests := []struct {
		code radio.ErrorCode
		want string
	}{
		{radio.ErrorRadioNotAvailable, "Advertisement aborted, radio turned off"},
		{radio.ErrorResourceInUse, "Advertisement aborted, resource in use"},
		{radio.ErrorNotSupported, "Advertisement aborted, unknown reason"},
		{radio.ErrorUnknown, "Advertisement aborted, unknown reason"},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, (&AbortError{Code: tt.code}).Error())
		})
	}
}

func TestAsyncError(t *testing.T) {
	err := &AsyncError{Kind: KindResolution, Op: "resolve", DeviceID: "AA:BB", Err: ErrNoEndpointPairs}

	assert.Equal(t, "resolve AA:BB: resolved device has no endpoint pairs", err.Error())
	assert.ErrorIs(t, err, ErrNoEndpointPairs)

	noDevice := &AsyncError{Kind: KindUnexpected, Op: "listen", Err: errors.New("closed")}
	assert.Equal(t, "listen: closed", noDevice.Error())
}

func TestAsAsync(t *testing.T) {
	plain := asAsync("resolve", ErrNoEndpointPairs)
	assert.Equal(t, KindResolution, plain.Kind)
	assert.Equal(t, "resolve", plain.Op)

	existing := &AsyncError{Kind: KindRegistryConflict, Op: "register"}
	assert.Same(t, existing, asAsync("event", existing))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "RESOLUTION", KindResolution.String())
	assert.Equal(t, "UNKNOWN", ErrorKind(42).String())
}
