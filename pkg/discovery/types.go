package discovery

import (
	"errors"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of hosted networks.
	ServiceType = "_hostednet._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is announced when no port is configured.
	DefaultPort = 9

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeySSID  = "ssid"
	TXTKeyAuth  = "auth"
	TXTKeyPeers = "peers"
	TXTKeyState = "state"
	TXTKeyHost  = "host"
)

// Authentication modes.
const (
	AuthWPA2PSK = "wpa2-psk"
	AuthOpen    = "open"
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
)

// NetworkInfo describes a hosted network to announce.
type NetworkInfo struct {
	// InstanceName is the DNS-SD instance name. Defaults to SSID.
	InstanceName string

	SSID  string
	Auth  string
	Peers int
	State string

	// Host is the group owner address on the hosted network.
	Host string

	// Port is the service port. Zero means DefaultPort.
	Port uint16
}

// NetworkService is a hosted network found by browsing.
type NetworkService struct {
	InstanceName string
	HostName     string
	Port         uint16
	Addresses    []string

	SSID  string
	Auth  string
	Peers int
	State string
	Host  string
}

// AnnouncerConfig configures announcer behavior.
type AnnouncerConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAnnouncerConfig returns the default announcer configuration.
func DefaultAnnouncerConfig() AnnouncerConfig {
	return AnnouncerConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string
}
