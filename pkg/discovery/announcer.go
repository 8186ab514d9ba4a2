package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Announcer publishes a hosted network on the local link.
type Announcer interface {
	// Announce starts announcing info, replacing any earlier announcement.
	Announce(ctx context.Context, info *NetworkInfo) error

	// Update replaces the TXT records of the current announcement.
	Update(info *NetworkInfo) error

	// Withdraw stops announcing. It is a no-op when nothing is announced.
	Withdraw() error
}

// MDNSAnnouncer implements Announcer using zeroconf.
type MDNSAnnouncer struct {
	config AnnouncerConfig

	mu       sync.Mutex
	server   *zeroconf.Server
	instance string
}

// NewMDNSAnnouncer creates a new mDNS announcer.
func NewMDNSAnnouncer(config AnnouncerConfig) *MDNSAnnouncer {
	return &MDNSAnnouncer{config: config}
}

// getInterfaces returns the network interfaces to announce on.
// Returns nil to use all interfaces.
func (a *MDNSAnnouncer) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Announce registers the hosted network service.
func (a *MDNSAnnouncer) Announce(ctx context.Context, info *NetworkInfo) error {
	instance, err := InstanceName(info)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing if any
	a.shutdownLocked()

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodeNetworkTXT(info)),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register hosted network service: %w", err)
	}

	a.server = server
	a.instance = instance
	return nil
}

// Update replaces the TXT records of the running announcement.
func (a *MDNSAnnouncer) Update(info *NetworkInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotFound
	}
	a.server.SetText(TXTRecordsToStrings(EncodeNetworkTXT(info)))
	return nil
}

// Withdraw stops the announcement.
func (a *MDNSAnnouncer) Withdraw() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.shutdownLocked()
	return nil
}

// Instance returns the announced instance name, or "" when idle.
func (a *MDNSAnnouncer) Instance() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instance
}

func (a *MDNSAnnouncer) shutdownLocked() {
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	a.instance = ""
}

// Ensure MDNSAnnouncer implements Announcer interface.
var _ Announcer = (*MDNSAnnouncer)(nil)
