package simradio

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/errgroup"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

// Simulation errors.
var (
	ErrRadioOff       = errors.New("radio is off")
	ErrNotAdvertising = errors.New("no advertisement started")
	ErrAuthFailed     = errors.New("passphrase rejected")
	ErrAlreadyJoined  = errors.New("device already joined")
)

// DefaultLocalHost is the address the simulated group owner assigns itself.
const DefaultLocalHost = "192.168.137.1"

// pskIterations and pskLength follow IEEE 802.11i.
const (
	pskIterations = 4096
	pskLength     = 32
)

// PSK derives the WPA2 pre-shared key for passphrase on ssid.
func PSK(passphrase, ssid string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(ssid), pskIterations, pskLength, sha1.New)
}

// Option configures a Radio.
type Option func(*Radio)

// WithResolveDelay makes Resolve take d before returning a device.
func WithResolveDelay(d time.Duration) Option {
	return func(r *Radio) { r.resolveDelay = d }
}

// WithLocalHost sets the local host name reported in endpoint pairs.
func WithLocalHost(host string) Option {
	return func(r *Radio) { r.localHost = host }
}

// WithDefaults sets the legacy SSID and passphrase new publishers start with.
func WithDefaults(ssid, passphrase string) Option {
	return func(r *Radio) {
		r.defaultSSID = ssid
		r.defaultPassphrase = passphrase
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Radio) { r.logger = logger }
}

// Radio is a simulated peer-to-peer radio.
type Radio struct {
	mu sync.Mutex

	enabled           bool
	defaultSSID       string
	defaultPassphrase string
	localHost         string
	resolveDelay      time.Duration
	logger            *slog.Logger

	active       *Publisher
	listeners    map[*listener]struct{}
	pending      map[string]*request
	devices      map[string]*Device
	noEndpoints  map[string]bool
	stopRequests int
}

// New creates an enabled radio with generated default legacy settings.
func New(opts ...Option) *Radio {
	r := &Radio{
		enabled:           true,
		defaultSSID:       "DIRECT-" + strings.ToUpper(randomHex(2)),
		defaultPassphrase: randomHex(12),
		localHost:         DefaultLocalHost,
		listeners:         make(map[*listener]struct{}),
		pending:           make(map[string]*request),
		devices:           make(map[string]*Device),
		noEndpoints:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Defaults returns the SSID and passphrase new publishers start with.
func (r *Radio) Defaults() (ssid, passphrase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultSSID, r.defaultPassphrase
}

// NewPublisher creates a publisher in StatusCreated.
func (r *Radio) NewPublisher() (radio.Publisher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &Publisher{
		radio:  r,
		events: newQueue(),
		adv: radio.Advertisement{
			ListenStateDiscoverability: radio.DiscoverabilityNormal,
			Legacy: radio.LegacySettings{
				SSID:       r.defaultSSID,
				Passphrase: r.defaultPassphrase,
			},
		},
	}, nil
}

// NewConnectionListener creates a listener for join requests.
func (r *Radio) NewConnectionListener() (radio.ConnectionListener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := &listener{radio: r, events: newQueue()}
	r.listeners[l] = struct{}{}
	return l, nil
}

// Resolve negotiates the link for a device that requested a connection.
func (r *Radio) Resolve(ctx context.Context, deviceID string) (radio.Device, error) {
	r.mu.Lock()
	req, ok := r.pending[deviceID]
	delay := r.resolveDelay
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", radio.ErrDeviceNotFound, deviceID)
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The request may have been withdrawn while negotiating.
	if r.pending[deviceID] != req {
		return nil, fmt.Errorf("%w: %s", radio.ErrDeviceNotFound, deviceID)
	}
	delete(r.pending, deviceID)

	var pairs []radio.EndpointPair
	if !r.noEndpoints[deviceID] {
		pairs = []radio.EndpointPair{{
			LocalHostName:  r.localHost,
			RemoteHostName: req.host,
		}}
	}

	d := &Device{
		radio:  r,
		id:     deviceID,
		pairs:  pairs,
		status: radio.Connected,
		events: newQueue(),
	}
	r.devices[deviceID] = d
	r.debugLog("device resolved", "deviceID", deviceID, "host", req.host)
	return d, nil
}

// RequestConnection simulates deviceID asking to join the advertised network.
// The request is delivered asynchronously to every connection listener.
func (r *Radio) RequestConnection(deviceID, deviceName, remoteHost string) error {
	r.mu.Lock()
	if err := r.checkJoinLocked(deviceID); err != nil {
		r.mu.Unlock()
		return err
	}

	req := &request{radio: r, id: deviceID, name: deviceName, host: remoteHost}
	r.pending[deviceID] = req

	listeners := make([]*listener, 0, len(r.listeners))
	for l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	r.debugLog("connection requested", "deviceID", deviceID, "listeners", len(listeners))
	for _, l := range listeners {
		l.deliver(req)
	}
	return nil
}

// Join simulates a legacy client joining with a passphrase. The derived
// PSK must match the one of the started advertisement.
func (r *Radio) Join(deviceID, remoteHost, passphrase string) error {
	r.mu.Lock()
	if err := r.checkJoinLocked(deviceID); err != nil {
		r.mu.Unlock()
		return err
	}
	p := r.active
	r.mu.Unlock()

	if err := p.verify(passphrase); err != nil {
		return err
	}
	return r.RequestConnection(deviceID, deviceID, remoteHost)
}

func (r *Radio) checkJoinLocked(deviceID string) error {
	if !r.enabled {
		return ErrRadioOff
	}
	if r.active == nil || r.active.Status() != radio.StatusStarted {
		return ErrNotAdvertising
	}
	if _, ok := r.devices[deviceID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyJoined, deviceID)
	}
	return nil
}

// Disconnect drops a connected device. Observers see a Disconnected event.
func (r *Radio) Disconnect(deviceID string) error {
	r.mu.Lock()
	d, ok := r.devices[deviceID]
	delete(r.devices, deviceID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", radio.ErrDeviceNotFound, deviceID)
	}
	return d.disconnect()
}

// SetRadioEnabled switches the radio on or off. Switching it off aborts the
// active advertisement with ErrorRadioNotAvailable and disconnects every
// device.
func (r *Radio) SetRadioEnabled(enabled bool) error {
	r.mu.Lock()
	was := r.enabled
	r.enabled = enabled
	if enabled || !was {
		r.mu.Unlock()
		return nil
	}

	active := r.active
	r.active = nil
	devices := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	clear(r.devices)
	clear(r.pending)
	r.mu.Unlock()

	r.debugLog("radio switched off", "devices", len(devices))

	if active != nil {
		active.abort(radio.ErrorRadioNotAvailable)
	}

	g := new(errgroup.Group)
	for _, d := range devices {
		g.Go(d.disconnect)
	}
	return g.Wait()
}

// Enabled reports whether the radio is on.
func (r *Radio) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// DropEndpoints makes the next resolution of deviceID return no endpoint
// pairs.
func (r *Radio) DropEndpoints(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noEndpoints[deviceID] = true
}

// Connected returns the ids of resolved, connected devices in sorted order.
func (r *Radio) Connected() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// StopRequests returns how many publisher stops were accepted.
func (r *Radio) StopRequests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopRequests
}

func (r *Radio) decline(deviceID string, req *request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[deviceID] == req {
		delete(r.pending, deviceID)
	}
	r.debugLog("connection declined", "deviceID", deviceID)
}

func (r *Radio) forget(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.devices[d.id] == d {
		delete(r.devices, d.id)
	}
}

func (r *Radio) removeListener(l *listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, l)
}

func (r *Radio) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug("simradio: "+msg, args...)
	}
}

var _ radio.Subsystem = (*Radio)(nil)
