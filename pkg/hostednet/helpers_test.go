package hostednet

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/log"
	"github.com/hostednet/hostednet-go/pkg/radio"
	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

const waitFor = 2 * time.Second

// Listener notification kinds recorded by recordingListener.
const (
	evConnected    = "connected"
	evDisconnected = "disconnected"
	evStarted      = "started"
	evStopped      = "stopped"
	evAborted      = "aborted"
	evException    = "exception"
	evLog          = "log"
)

type notification struct {
	kind string
	arg  string
}

// recordingListener records every notification in order.
type recordingListener struct {
	mu     sync.Mutex
	events []notification

	// panicOn makes the listener panic for one notification kind.
	panicOn string
}

func (r *recordingListener) add(kind, arg string) {
	r.mu.Lock()
	r.events = append(r.events, notification{kind: kind, arg: arg})
	panicOn := r.panicOn
	r.mu.Unlock()

	if kind == panicOn {
		panic("listener failure in " + kind)
	}
}

func (r *recordingListener) OnDeviceConnected(host string)     { r.add(evConnected, host) }
func (r *recordingListener) OnDeviceDisconnected(id string)    { r.add(evDisconnected, id) }
func (r *recordingListener) OnAdvertisementStarted()           { r.add(evStarted, "") }
func (r *recordingListener) OnAdvertisementStopped(msg string) { r.add(evStopped, msg) }
func (r *recordingListener) OnAdvertisementAborted(msg string) { r.add(evAborted, msg) }
func (r *recordingListener) OnAsyncException(msg string)       { r.add(evException, msg) }
func (r *recordingListener) LogMessage(msg string)             { r.add(evLog, msg) }

func (r *recordingListener) has(kind, arg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, notification{kind: kind, arg: arg})
}

func (r *recordingListener) args(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e.arg)
		}
	}
	return out
}

func (r *recordingListener) count(kind string) int {
	return len(r.args(kind))
}

func (r *recordingListener) wait(t *testing.T, kind, arg string) {
	t.Helper()
	require.Eventually(t, func() bool { return r.has(kind, arg) }, waitFor, 5*time.Millisecond,
		"missing notification %s(%q)", kind, arg)
}

func (r *recordingListener) waitKind(t *testing.T, kind string) []string {
	t.Helper()
	require.Eventually(t, func() bool { return r.count(kind) > 0 }, waitFor, 5*time.Millisecond,
		"missing notification %s", kind)
	return r.args(kind)
}

// mockPrompt is a testify mock of Prompt.
type mockPrompt struct {
	mock.Mock
}

func (m *mockPrompt) AcceptIncomingConnection() bool {
	return m.Called().Bool(0)
}

// recordingEvents captures log events.
type recordingEvents struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingEvents) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEvents) snapshot() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// recordingAnnouncer records announcer calls.
type recordingAnnouncer struct {
	mu        sync.Mutex
	announced []discovery.NetworkInfo
	updates   []discovery.NetworkInfo
	withdraws int
	active    bool
}

func (a *recordingAnnouncer) Announce(_ context.Context, info *discovery.NetworkInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.announced = append(a.announced, *info)
	a.active = true
	return nil
}

func (a *recordingAnnouncer) Update(info *discovery.NetworkInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		return discovery.ErrNotFound
	}
	a.updates = append(a.updates, *info)
	return nil
}

func (a *recordingAnnouncer) Withdraw() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.withdraws++
	a.active = false
	return nil
}

func (a *recordingAnnouncer) lastUpdate() (discovery.NetworkInfo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.updates) == 0 {
		return discovery.NetworkInfo{}, false
	}
	return a.updates[len(a.updates)-1], true
}

func (a *recordingAnnouncer) isActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// blockingSubsystem holds resolutions until released, ignoring cancellation.
type blockingSubsystem struct {
	*simradio.Radio
	release chan struct{}
	entered chan string
}

func newBlockingSubsystem(opts ...simradio.Option) *blockingSubsystem {
	return &blockingSubsystem{
		Radio:   simradio.New(opts...),
		release: make(chan struct{}),
		entered: make(chan string, 8),
	}
}

func (b *blockingSubsystem) Resolve(_ context.Context, deviceID string) (radio.Device, error) {
	b.entered <- deviceID
	<-b.release
	return b.Radio.Resolve(context.Background(), deviceID)
}

// stubDevice is a device that is not known to any subsystem.
type stubDevice struct {
	id string
}

func (d stubDevice) DeviceID() string                        { return d.id }
func (d stubDevice) ConnectionStatus() radio.ConnectionStatus { return radio.Disconnected }
func (d stubDevice) EndpointPairs() []radio.EndpointPair      { return nil }
func (d stubDevice) Close() error                             { return nil }
func (d stubDevice) OnConnectionStatusChanged(func(radio.Device, radio.ConnectionStatus)) func() {
	return func() {}
}

// startedController starts c with cfg and waits for the started notification.
func startedController(t *testing.T, c *Controller, l *recordingListener, cfg NetworkConfig) {
	t.Helper()
	require.NoError(t, c.Start(context.Background(), cfg))
	require.Eventually(t, func() bool { return c.State() == StateStarted }, waitFor, 5*time.Millisecond)
	l.wait(t, evStarted, "")
}

func hasPeer(c *Controller, deviceID string) bool {
	for _, s := range c.Peers() {
		if s.DeviceID == deviceID {
			return true
		}
	}
	return false
}

// linkDropSubsystem resolves devices whose link is already gone by the time
// the gatekeeper subscribes to them.
type linkDropSubsystem struct {
	*simradio.Radio

	// reportStatus also makes ConnectionStatus report Disconnected.
	reportStatus bool
}

func (s *linkDropSubsystem) Resolve(ctx context.Context, deviceID string) (radio.Device, error) {
	d, err := s.Radio.Resolve(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return &droppedDevice{Device: d, reportStatus: s.reportStatus}, nil
}

// droppedDevice delivers Disconnected synchronously on subscription.
type droppedDevice struct {
	radio.Device
	reportStatus bool
}

func (d *droppedDevice) ConnectionStatus() radio.ConnectionStatus {
	if d.reportStatus {
		return radio.Disconnected
	}
	return d.Device.ConnectionStatus()
}

func (d *droppedDevice) OnConnectionStatusChanged(fn func(radio.Device, radio.ConnectionStatus)) func() {
	unsubscribe := d.Device.OnConnectionStatusChanged(fn)
	if !d.reportStatus {
		fn(d, radio.Disconnected)
	}
	return unsubscribe
}
