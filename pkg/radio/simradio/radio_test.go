package simradio

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

const waitFor = 2 * time.Second

// statusRecorder collects publisher status events.
type statusRecorder struct {
	mu     sync.Mutex
	events []radio.StatusEvent
}

func (s *statusRecorder) record(e radio.StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *statusRecorder) last() (radio.StatusEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return radio.StatusEvent{}, false
	}
	return s.events[len(s.events)-1], true
}

func (s *statusRecorder) waitStatus(t *testing.T, status radio.PublisherStatus) radio.StatusEvent {
	t.Helper()
	var got radio.StatusEvent
	require.Eventually(t, func() bool {
		e, ok := s.last()
		got = e
		return ok && e.Status == status
	}, waitFor, 5*time.Millisecond)
	return got
}

func startPublisher(t *testing.T, r *Radio, adv *radio.Advertisement) (radio.Publisher, *statusRecorder) {
	t.Helper()
	p, err := r.NewPublisher()
	require.NoError(t, err)
	if adv != nil {
		require.NoError(t, p.ApplyAdvertisement(*adv))
	}
	rec := &statusRecorder{}
	p.OnStatusChanged(rec.record)
	require.NoError(t, p.Start())
	return p, rec
}

func legacyAdvertisement(ssid, passphrase string) *radio.Advertisement {
	return &radio.Advertisement{
		AutonomousGroupOwnerEnabled: true,
		ListenStateDiscoverability:  radio.DiscoverabilityNormal,
		Legacy: radio.LegacySettings{
			Enabled:    true,
			SSID:       ssid,
			Passphrase: passphrase,
		},
	}
}

func TestPSK_KnownVector(t *testing.T) {
	want := "f42c6fc52df0ebef9ebb4b90b38a5f902e83fe1b135a70e23aed762e9710a12e"
	assert.Equal(t, want, hex.EncodeToString(PSK("password", "IEEE")))
}

func TestNewPublisher_GeneratesDefaults(t *testing.T) {
	r := New()
	p, err := r.NewPublisher()
	require.NoError(t, err)

	adv := p.Advertisement()
	assert.True(t, strings.HasPrefix(adv.Legacy.SSID, "DIRECT-"))
	assert.Len(t, adv.Legacy.Passphrase, 12)
	assert.Equal(t, radio.StatusCreated, p.Status())

	ssid, pass := r.Defaults()
	assert.Equal(t, ssid, adv.Legacy.SSID)
	assert.Equal(t, pass, adv.Legacy.Passphrase)
}

func TestPublisher_StartDeliversStarted(t *testing.T) {
	r := New()
	p, rec := startPublisher(t, r, legacyAdvertisement("TESTNET", "secret123"))

	rec.waitStatus(t, radio.StatusStarted)
	assert.Equal(t, radio.StatusStarted, p.Status())

	err := p.ApplyAdvertisement(*legacyAdvertisement("OTHER", "otherpass"))
	assert.ErrorIs(t, err, radio.ErrInvalidState)
}

func TestPublisher_StartWithRadioOffAborts(t *testing.T) {
	r := New()
	require.NoError(t, r.SetRadioEnabled(false))

	_, rec := startPublisher(t, r, nil)
	e := rec.waitStatus(t, radio.StatusAborted)
	assert.Equal(t, radio.ErrorRadioNotAvailable, e.Error)
}

func TestPublisher_SecondPublisherResourceInUse(t *testing.T) {
	r := New()
	_, first := startPublisher(t, r, nil)
	first.waitStatus(t, radio.StatusStarted)

	_, second := startPublisher(t, r, nil)
	e := second.waitStatus(t, radio.StatusAborted)
	assert.Equal(t, radio.ErrorResourceInUse, e.Error)
}

func TestPublisher_Stop(t *testing.T) {
	r := New()
	p, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	require.NoError(t, p.Stop())
	rec.waitStatus(t, radio.StatusStopped)
	assert.Equal(t, 1, r.StopRequests())

	assert.ErrorIs(t, p.Stop(), radio.ErrInvalidState)
	assert.Equal(t, 1, r.StopRequests())

	// The radio is free again
	_, next := startPublisher(t, r, nil)
	next.waitStatus(t, radio.StatusStarted)
}

func TestPublisher_ApplyRejectsLegacyWithoutGroupOwner(t *testing.T) {
	p, err := New().NewPublisher()
	require.NoError(t, err)

	adv := legacyAdvertisement("TESTNET", "secret123")
	adv.AutonomousGroupOwnerEnabled = false
	assert.ErrorIs(t, p.ApplyAdvertisement(*adv), ErrInvalidAdvertisement)
}

func TestPublisher_UnsubscribeStopsEvents(t *testing.T) {
	r := New()
	p, err := r.NewPublisher()
	require.NoError(t, err)

	rec := &statusRecorder{}
	unsubscribe := p.OnStatusChanged(rec.record)
	unsubscribe()
	unsubscribe()

	require.NoError(t, p.Start())
	time.Sleep(20 * time.Millisecond)
	_, ok := rec.last()
	assert.False(t, ok)
}

func TestRequestConnection_RequiresAdvertisement(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.RequestConnection("AA:BB", "peer", "peer-host"), ErrNotAdvertising)

	require.NoError(t, r.SetRadioEnabled(false))
	assert.ErrorIs(t, r.RequestConnection("AA:BB", "peer", "peer-host"), ErrRadioOff)
}

func TestRequestConnection_ResolveAndDisconnect(t *testing.T) {
	r := New(WithLocalHost("10.0.0.1"))
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	l, err := r.NewConnectionListener()
	require.NoError(t, err)
	defer l.Close()

	requests := make(chan radio.ConnectionRequest, 1)
	l.OnConnectionRequested(func(req radio.ConnectionRequest) { requests <- req })

	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))

	var req radio.ConnectionRequest
	select {
	case req = <-requests:
	case <-time.After(waitFor):
		t.Fatal("connection request not delivered")
	}
	assert.Equal(t, "AA:BB", req.DeviceID())
	assert.Equal(t, "phone", req.DeviceName())

	d, err := r.Resolve(context.Background(), "AA:BB")
	require.NoError(t, err)
	require.Len(t, d.EndpointPairs(), 1)
	assert.Equal(t, "peer-host", d.EndpointPairs()[0].RemoteHostName)
	assert.Equal(t, "10.0.0.1", d.EndpointPairs()[0].LocalHostName)
	assert.Equal(t, radio.Connected, d.ConnectionStatus())
	assert.Equal(t, []string{"AA:BB"}, r.Connected())

	// A second join for a connected id is refused
	assert.ErrorIs(t, r.RequestConnection("AA:BB", "phone", "peer-host"), ErrAlreadyJoined)

	statuses := make(chan radio.ConnectionStatus, 1)
	d.OnConnectionStatusChanged(func(_ radio.Device, s radio.ConnectionStatus) { statuses <- s })

	require.NoError(t, r.Disconnect("AA:BB"))
	select {
	case s := <-statuses:
		assert.Equal(t, radio.Disconnected, s)
	case <-time.After(waitFor):
		t.Fatal("disconnect not delivered")
	}
	assert.Empty(t, r.Connected())
	assert.ErrorIs(t, r.Disconnect("AA:BB"), radio.ErrDeviceNotFound)
}

func TestResolve_Declined(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	l, err := r.NewConnectionListener()
	require.NoError(t, err)
	defer l.Close()

	declined := make(chan struct{})
	l.OnConnectionRequested(func(req radio.ConnectionRequest) {
		req.Decline()
		close(declined)
	})
	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))

	select {
	case <-declined:
	case <-time.After(waitFor):
		t.Fatal("connection request not delivered")
	}

	_, err = r.Resolve(context.Background(), "AA:BB")
	assert.ErrorIs(t, err, radio.ErrDeviceNotFound)
}

func TestResolve_ContextCancelled(t *testing.T) {
	r := New(WithResolveDelay(time.Second))
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)
	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, "AA:BB")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, r.Connected())
}

func TestResolve_DropEndpoints(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	r.DropEndpoints("AA:BB")
	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))

	d, err := r.Resolve(context.Background(), "AA:BB")
	require.NoError(t, err)
	assert.Empty(t, d.EndpointPairs())
}

func TestJoin_VerifiesPassphrase(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, legacyAdvertisement("TESTNET", "secret123"))
	rec.waitStatus(t, radio.StatusStarted)

	assert.ErrorIs(t, r.Join("AA:BB", "peer-host", "wrongpass"), ErrAuthFailed)
	require.NoError(t, r.Join("AA:BB", "peer-host", "secret123"))

	_, err := r.Resolve(context.Background(), "AA:BB")
	require.NoError(t, err)
}

func TestJoin_LegacyDisabled(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	_, pass := r.Defaults()
	assert.ErrorIs(t, r.Join("AA:BB", "peer-host", pass), ErrAuthFailed)
}

func TestSetRadioEnabled_OffAbortsAndDisconnects(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))
	d, err := r.Resolve(context.Background(), "AA:BB")
	require.NoError(t, err)

	disconnected := make(chan struct{})
	d.OnConnectionStatusChanged(func(radio.Device, radio.ConnectionStatus) { close(disconnected) })

	require.NoError(t, r.SetRadioEnabled(false))
	assert.False(t, r.Enabled())

	e := rec.waitStatus(t, radio.StatusAborted)
	assert.Equal(t, radio.ErrorRadioNotAvailable, e.Error)

	select {
	case <-disconnected:
	case <-time.After(waitFor):
		t.Fatal("device not disconnected")
	}
	assert.Empty(t, r.Connected())

	require.NoError(t, r.SetRadioEnabled(true))
	assert.True(t, r.Enabled())
}

func TestDevice_CloseForgetsDevice(t *testing.T) {
	r := New()
	_, rec := startPublisher(t, r, nil)
	rec.waitStatus(t, radio.StatusStarted)

	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))
	d, err := r.Resolve(context.Background(), "AA:BB")
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Empty(t, r.Connected())
}
