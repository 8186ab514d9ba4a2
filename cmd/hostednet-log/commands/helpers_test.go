package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hostednet/hostednet-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// runEvents is one short advertisement run with a single peer.
func runEvents(base time.Time) []log.Event {
	const run = "0f1e2d3c-aaaa-bbbb-cccc-000000000001"
	return []log.Event{
		{
			Timestamp: base, RunID: run, SSID: "TESTNET",
			Category: log.CategoryLifecycle, Source: log.SourceController,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityAdvertisement, OldState: "IDLE", NewState: "STARTING"},
		},
		{
			Timestamp: base.Add(time.Second), RunID: run, SSID: "TESTNET",
			Category: log.CategoryLifecycle, Source: log.SourceSubsystem,
			Notification: &log.NotificationEvent{Type: log.NotificationAdvertisementStarted},
		},
		{
			Timestamp: base.Add(2 * time.Second), RunID: run, SSID: "TESTNET", DeviceID: "AA:BB",
			Category: log.CategoryPeer, Source: log.SourceGatekeeper,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityPeer, NewState: "Connected"},
		},
		{
			Timestamp: base.Add(3 * time.Second), RunID: run, SSID: "TESTNET", DeviceID: "CC:DD",
			Category: log.CategoryError, Source: log.SourceGatekeeper,
			Error: &log.ErrorEventData{Kind: "RESOLUTION", Message: "no endpoint pairs", Op: "resolve"},
		},
		{
			Timestamp: base.Add(4 * time.Second), RunID: run, SSID: "TESTNET", DeviceID: "AA:BB",
			Category: log.CategoryPeer, Source: log.SourceGatekeeper,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityPeer, OldState: "Connected", NewState: "Disconnected"},
		},
		{
			Timestamp: base.Add(4 * time.Second), RunID: run, SSID: "TESTNET", DeviceID: "AA:BB",
			Category: log.CategoryPeer, Source: log.SourceGatekeeper,
			Notification: &log.NotificationEvent{Type: log.NotificationDeviceDisconnected, Message: "AA:BB"},
		},
		{
			Timestamp: base.Add(5 * time.Second), RunID: run, SSID: "TESTNET",
			Category: log.CategoryLifecycle, Source: log.SourceSubsystem,
			Notification: &log.NotificationEvent{Type: log.NotificationAdvertisementAborted, Message: "Advertisement aborted, radio turned off"},
		},
	}
}
