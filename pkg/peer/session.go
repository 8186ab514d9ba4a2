package peer

import (
	"time"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

// Session describes one connected peer.
type Session struct {
	// DeviceID is the unique key of the peer.
	DeviceID string

	// RemoteHostName is the address assigned to the peer (taken from the
	// first endpoint pair).
	RemoteHostName string

	ConnectionStatus radio.ConnectionStatus

	// EndpointPairs in the order the subsystem reported them.
	EndpointPairs []radio.EndpointPair

	// ConnectedAt is when the session was registered.
	ConnectedAt time.Time
}

// NewSession builds a connected session from resolved endpoint pairs.
func NewSession(deviceID string, pairs []radio.EndpointPair) *Session {
	s := &Session{
		DeviceID:         deviceID,
		ConnectionStatus: radio.Connected,
		EndpointPairs:    append([]radio.EndpointPair(nil), pairs...),
		ConnectedAt:      time.Now(),
	}
	if len(pairs) > 0 {
		s.RemoteHostName = pairs[0].RemoteHostName
	}
	return s
}

// clone returns a deep copy.
func (s *Session) clone() Session {
	c := *s
	c.EndpointPairs = append([]radio.EndpointPair(nil), s.EndpointPairs...)
	return c
}
