package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// MDNSBrowser finds hosted networks announced on the local link.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{config: config}
}

// Browse streams hosted networks until ctx is done. Services are aggregated
// by instance name; addresses seen on several interfaces are merged into a
// single entry, which is emitted once.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *NetworkService, error) {
	out := make(chan *NetworkService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		services := make(map[string]*NetworkService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToNetwork(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
	}()

	return out, nil
}

// Scan browses until ctx is done and returns every network found, in the
// order they were discovered.
func (b *MDNSBrowser) Scan(ctx context.Context) ([]*NetworkService, error) {
	ch, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var found []*NetworkService
	for svc := range ch {
		found = append(found, svc)
	}
	return found, nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToNetwork converts a zeroconf entry to a NetworkService. Entries with
// unusable TXT records yield nil.
func entryToNetwork(entry *zeroconf.ServiceEntry) *NetworkService {
	info, err := DecodeNetworkTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &NetworkService{
		InstanceName: entry.Instance,
		HostName:     entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		SSID:         info.SSID,
		Auth:         info.Auth,
		Peers:        info.Peers,
		State:        info.State,
		Host:         info.Host,
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
