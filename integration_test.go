package hostednet_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/hostednet"
	"github.com/hostednet/hostednet-go/pkg/log"
	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

// recorder is a Listener that keeps every notification in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) has(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, s)
}

func (r *recorder) hasPrefix(prefix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.events, func(e string) bool {
		return strings.HasPrefix(e, prefix)
	})
}

func (r *recorder) OnDeviceConnected(host string)   { r.add("connected:" + host) }
func (r *recorder) OnDeviceDisconnected(id string)  { r.add("disconnected:" + id) }
func (r *recorder) OnAdvertisementStarted()         { r.add("started") }
func (r *recorder) OnAdvertisementStopped(m string) { r.add("stopped:" + m) }
func (r *recorder) OnAdvertisementAborted(m string) { r.add("aborted:" + m) }
func (r *recorder) OnAsyncException(m string)       { r.add("exception:" + m) }
func (r *recorder) LogMessage(m string)             { r.add("log:" + m) }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestE2E_LegacyClientsAndRadioLoss runs several legacy clients through a
// started network and then switches the radio off underneath them.
func TestE2E_LegacyClientsAndRadioLoss(t *testing.T) {
	sim := simradio.New(simradio.WithResolveDelay(10 * time.Millisecond))
	rec := &recorder{}
	ctrl := hostednet.New(sim, hostednet.WithListener(rec))
	defer ctrl.Close()

	cfg := hostednet.NetworkConfig{SSID: "E2ENET", Passphrase: "correct horse", AutoAccept: true}
	if err := ctrl.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "advertisement start", func() bool { return ctrl.State() == hostednet.StateStarted })

	// Wrong passphrase never reaches the controller.
	if err := sim.Join("BAD", "10.0.0.99", "battery staple"); err == nil {
		t.Fatal("expected join with wrong passphrase to fail")
	}

	ids := []string{"CC:01", "AA:01", "BB:01"}
	for i, id := range ids {
		if err := sim.Join(id, fmt.Sprintf("10.0.0.%d", i+2), "correct horse"); err != nil {
			t.Fatalf("Join %s failed: %v", id, err)
		}
	}
	waitFor(t, "three peers", func() bool { return len(ctrl.Peers()) == 3 })

	peers := ctrl.Peers()
	for i, want := range []string{"AA:01", "BB:01", "CC:01"} {
		if peers[i].DeviceID != want {
			t.Errorf("peer %d = %s, want %s", i, peers[i].DeviceID, want)
		}
	}
	if rec.has("connected:10.0.0.99") {
		t.Error("rejected client was registered")
	}

	if err := sim.SetRadioEnabled(false); err != nil {
		t.Fatalf("SetRadioEnabled failed: %v", err)
	}
	waitFor(t, "abort", func() bool { return ctrl.State() == hostednet.StateAborted })
	waitFor(t, "disconnects", func() bool { return len(ctrl.Peers()) == 0 })

	if !rec.has("aborted:Advertisement aborted, radio turned off") {
		t.Error("missing abort notification")
	}
	for _, id := range ids {
		waitFor(t, "disconnect of "+id, func() bool { return rec.has("disconnected:" + id) })
	}

	if !strings.Contains(ctrl.Report(), "No connected devices found") {
		t.Errorf("report still lists peers:\n%s", ctrl.Report())
	}
}

// TestE2E_EventLog captures one run to a file and reads it back.
func TestE2E_EventLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.hlog")
	fileLogger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	sim := simradio.New()
	rec := &recorder{}
	ctrl := hostednet.New(sim, hostednet.WithListener(rec), hostednet.WithEventLogger(fileLogger))

	cfg := hostednet.NetworkConfig{SSID: "LOGNET", Passphrase: "secret123", AutoAccept: true}
	if err := ctrl.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "advertisement start", func() bool { return rec.has("started") })

	if err := sim.RequestConnection("AA:BB", "phone", "peer-host"); err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}
	waitFor(t, "peer", func() bool { return rec.has("connected:peer-host") })

	if err := sim.Disconnect("AA:BB"); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	waitFor(t, "disconnect", func() bool { return rec.has("disconnected:AA:BB") })

	if err := ctrl.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitFor(t, "stop", func() bool { return rec.has("stopped:Advertisement stopped") })

	if err := ctrl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := fileLogger.Close(); err != nil {
		t.Fatalf("logger Close failed: %v", err)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var notifications []log.NotificationType
	runIDs := map[string]bool{}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.RunID != "" {
			runIDs[event.RunID] = true
			if event.SSID != "LOGNET" {
				t.Errorf("event SSID = %q, want LOGNET", event.SSID)
			}
		}
		if event.Notification != nil && event.Notification.Type != log.NotificationLogMessage {
			notifications = append(notifications, event.Notification.Type)
		}
	}

	want := []log.NotificationType{
		log.NotificationAdvertisementStarted,
		log.NotificationDeviceConnected,
		log.NotificationDeviceDisconnected,
		log.NotificationAdvertisementStopped,
	}
	if !slices.Equal(notifications, want) {
		t.Errorf("notifications = %v, want %v", notifications, want)
	}
	if len(runIDs) != 1 {
		t.Errorf("expected one run, got %d", len(runIDs))
	}
}

func hasMulticastInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagMulticast != 0 && iface.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}

// TestE2E_Discovery announces a started network via mDNS and finds it
// with the browser.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !hasMulticastInterface() {
		t.Skip("no multicast capable interface")
	}

	announcer := discovery.NewMDNSAnnouncer(discovery.DefaultAnnouncerConfig())
	rec := &recorder{}
	ctrl := hostednet.New(simradio.New(), hostednet.WithListener(rec), hostednet.WithAnnouncer(announcer))
	defer ctrl.Close()

	cfg := hostednet.NetworkConfig{SSID: "MDNSNET-" + time.Now().Format("150405"), AutoAccept: true}
	if err := ctrl.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "advertisement start", func() bool { return rec.has("started") })
	if rec.hasPrefix("exception:announce") {
		t.Skip("mDNS announce not possible here")
	}

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	found, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{}).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	for _, svc := range found {
		if svc.SSID != cfg.SSID {
			continue
		}
		if svc.Auth != discovery.AuthWPA2PSK {
			t.Errorf("auth = %q, want %q", svc.Auth, discovery.AuthWPA2PSK)
		}
		if svc.State != hostednet.StateStarted.String() {
			t.Errorf("state = %q, want %q", svc.State, hostednet.StateStarted.String())
		}
		return
	}
	t.Fatalf("network %s not found among %d services", cfg.SSID, len(found))
}
