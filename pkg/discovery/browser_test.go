package discovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func testEntry(instance string, text []string, ips ...string) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: instance,
			Service:  ServiceType,
			Domain:   Domain,
		},
		HostName: "laptop.local.",
		Port:     DefaultPort,
		Text:     text,
	}
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		if parsed.To4() != nil {
			entry.AddrIPv4 = append(entry.AddrIPv4, parsed)
		} else {
			entry.AddrIPv6 = append(entry.AddrIPv6, parsed)
		}
	}
	return entry
}

func TestEntryToNetwork(t *testing.T) {
	entry := testEntry("TESTNET",
		[]string{"ssid=TESTNET", "auth=wpa2-psk", "peers=1", "state=Started"},
		"192.168.1.10", "fe80::1")

	svc := entryToNetwork(entry)
	if svc == nil {
		t.Fatal("entryToNetwork returned nil")
	}
	if svc.SSID != "TESTNET" || svc.Peers != 1 || svc.State != "Started" {
		t.Errorf("unexpected service %+v", svc)
	}
	if svc.Port != DefaultPort {
		t.Errorf("port: got %d, want %d", svc.Port, DefaultPort)
	}
	if len(svc.Addresses) != 2 || svc.Addresses[0] != "192.168.1.10" {
		t.Errorf("addresses: got %v", svc.Addresses)
	}
}

func TestEntryToNetworkRejectsInvalidTXT(t *testing.T) {
	if svc := entryToNetwork(testEntry("other", []string{"foo=bar"})); svc != nil {
		t.Errorf("expected nil, got %+v", svc)
	}
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	if len(addrs) != 2 {
		t.Fatalf("merge: got %v", addrs)
	}

	addrs = removeAddresses(addrs, testEntry("x", nil, "10.0.0.1"))
	if len(addrs) != 1 || addrs[0] != "10.0.0.2" {
		t.Errorf("remove: got %v", addrs)
	}
}
