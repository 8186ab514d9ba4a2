package hostednet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/log"
	"github.com/hostednet/hostednet-go/pkg/peer"
	"github.com/hostednet/hostednet-go/pkg/radio"
)

// Controller owns the hosted network lifecycle.
type Controller struct {
	subsystem radio.Subsystem
	logger    *slog.Logger
	notify    *notifier
	announcer discovery.Announcer
	peers     *peer.Registry

	// opMu serializes Start, Stop, Reset and Close.
	opMu sync.Mutex

	mu          sync.Mutex
	config      NetworkConfig
	state       State
	reason      string
	publisher   radio.Publisher
	unsubscribe func()
	gate        *gatekeeper
	runCtx      context.Context
	cancelRun   context.CancelFunc
	generation  uint64
	localHost   string
	closed      bool
}

// New creates an idle controller for subsystem.
func New(subsystem radio.Subsystem, opts ...Option) *Controller {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Controller{
		subsystem: subsystem,
		logger:    logger,
		notify:    newNotifier(logger, o.events),
		announcer: o.announcer,
		peers:     peer.NewRegistry(),
		state:     StateIdle,
	}
	c.notify.setListener(o.listener)
	c.notify.setPrompt(o.prompt)
	return c
}

// RegisterListener replaces the notification listener. Nil unregisters.
func (c *Controller) RegisterListener(l Listener) {
	c.notify.setListener(l)
}

// RegisterPrompt replaces the prompt. Nil unregisters, which makes every
// request be accepted.
func (c *Controller) RegisterPrompt(p Prompt) {
	c.notify.setPrompt(p)
}

// Start resets the controller and requests a new advertisement with cfg.
// It returns once the subsystem accepted the request; the outcome is
// reported through the Listener. Unset SSID and passphrase take the
// subsystem defaults. ctx bounds the run: cancelling it aborts in-flight
// peer resolutions.
func (c *Controller) Start(ctx context.Context, cfg NetworkConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.config = cfg
	c.mu.Unlock()

	if err := c.reset(); err != nil {
		c.logger.Warn("reset before start", "error", err)
	}

	pub, err := c.subsystem.NewPublisher()
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}

	adv := pub.Advertisement()
	adv.AutonomousGroupOwnerEnabled = true
	adv.Legacy.Enabled = true
	if cfg.SSID != "" {
		adv.Legacy.SSID = cfg.SSID
	} else {
		cfg.SSID = adv.Legacy.SSID
	}
	if cfg.Passphrase != "" {
		adv.Legacy.Passphrase = cfg.Passphrase
	} else {
		cfg.Passphrase = adv.Legacy.Passphrase
	}
	if err := pub.ApplyAdvertisement(adv); err != nil {
		return fmt.Errorf("apply advertisement: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runID := uuid.NewString()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.config = cfg
	c.publisher = pub
	c.runCtx = runCtx
	c.cancelRun = cancel
	c.gate = newGatekeeper(runCtx, c, gen, cfg.AutoAccept)
	c.state = StateStarting
	c.reason = ""
	c.unsubscribe = pub.OnStatusChanged(func(e radio.StatusEvent) {
		c.handleStatus(gen, e)
	})
	c.mu.Unlock()

	c.notify.setRun(runID, cfg.SSID)
	c.notify.stateChanged(log.StateEntityAdvertisement, "", StateIdle.String(), StateStarting.String(), "")

	if err := pub.Start(); err != nil {
		c.mu.Lock()
		if c.generation == gen {
			c.generation++
			c.unsubscribe()
			c.unsubscribe = nil
			c.publisher = nil
			c.gate = nil
			c.cancelRun()
			c.cancelRun = nil
			c.runCtx = nil
			c.state = StateIdle
		}
		c.mu.Unlock()
		return fmt.Errorf("start advertisement: %w", err)
	}

	c.logger.Info("advertisement requested", "ssid", cfg.SSID, "runID", runID, "autoAccept", cfg.AutoAccept)
	return nil
}

// Stop requests the running advertisement to stop. Outside the Starting and
// Started states no stop is issued: the Listener receives a bad status
// notification and ErrBadStatus is returned.
func (c *Controller) Stop() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	pub := c.publisher
	prev := c.state
	ok := pub != nil && prev.stoppable()
	if ok {
		c.state = StateStopping
	}
	c.mu.Unlock()

	if !ok {
		c.notify.advertisementStopped(msgBadStatus)
		return fmt.Errorf("%w: state %s", ErrBadStatus, prev)
	}

	if err := pub.Stop(); err != nil {
		c.mu.Lock()
		if c.publisher == pub && c.state == StateStopping {
			c.state = prev
		}
		c.mu.Unlock()
		return fmt.Errorf("stop advertisement: %w", err)
	}

	c.notify.stateChanged(log.StateEntityAdvertisement, "", prev.String(), StateStopping.String(), "")
	return nil
}

// Reset returns the controller to Idle from any state. It stops a running
// advertisement, closes the connection listener, releases every device
// session and clears the peer registry. Teardown errors are aggregated.
func (c *Controller) Reset() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.reset()
}

// Close resets the controller and refuses further starts.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	return c.reset()
}

func (c *Controller) reset() error {
	c.mu.Lock()
	c.generation++
	pub := c.publisher
	unsubscribe := c.unsubscribe
	cancel := c.cancelRun
	stopPublisher := pub != nil && c.state.stoppable()
	var release func() error
	if c.gate != nil {
		release = c.gate.releaseLocked()
	}
	cleared := c.peers.Clear()
	old := c.state

	c.publisher = nil
	c.unsubscribe = nil
	c.gate = nil
	c.runCtx = nil
	c.cancelRun = nil
	c.state = StateIdle
	c.reason = ""
	c.localHost = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}

	var err error
	if stopPublisher {
		if stopErr := pub.Stop(); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("stop publisher: %w", stopErr))
		}
	}
	if release != nil {
		err = multierr.Append(err, release())
	}
	if c.announcer != nil {
		if wErr := c.announcer.Withdraw(); wErr != nil {
			err = multierr.Append(err, fmt.Errorf("withdraw announcement: %w", wErr))
		}
	}

	if old != StateIdle || cleared > 0 {
		c.logger.Debug("reset", "from", old.String(), "peersCleared", cleared)
		c.notify.stateChanged(log.StateEntityAdvertisement, "", old.String(), StateIdle.String(), "reset")
	}
	return err
}

// State returns the current advertisement state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StateReason returns the abort message while in StateAborted.
func (c *Controller) StateReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Config returns the caller supplied configuration before Start and the
// effective one after.
func (c *Controller) Config() NetworkConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Peers returns a snapshot of the connected peers sorted by device id.
func (c *Controller) Peers() []peer.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peers.Snapshot()
}

func (c *Controller) handleStatus(gen uint64, e radio.StatusEvent) {
	defer c.recoverAsync("status changed", "")

	c.logger.Debug("publisher status", "status", e.Status.String(), "error", e.Error.String())

	switch e.Status {
	case radio.StatusStarted:
		c.onStarted(gen)
	case radio.StatusStopped:
		c.onStopped(gen)
	case radio.StatusAborted:
		c.onAborted(gen, e.Error)
	}
}

func (c *Controller) onStarted(gen uint64) {
	if !c.current(gen) {
		return
	}

	listener, listenErr := c.subsystem.NewConnectionListener()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		if listener != nil {
			_ = listener.Close()
		}
		return
	}
	old := c.state
	c.state = StateStarted
	var previous func() error
	if listenErr == nil {
		previous = c.gate.listenLocked(listener)
	}
	info := c.networkInfoLocked()
	ctx := c.runCtx
	c.mu.Unlock()

	if previous != nil {
		if err := previous(); err != nil {
			c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "close listener", Err: err})
		}
	}
	c.notify.stateChanged(log.StateEntityAdvertisement, "", old.String(), StateStarted.String(), "")

	if listenErr != nil {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "listen", Err: listenErr})
	} else {
		c.notify.logMessage(log.SourceGatekeeper, "", msgListenerReady)
	}
	c.notify.advertisementStarted()
	c.announce(ctx, info)
}

func (c *Controller) onStopped(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	old := c.state
	c.state = StateStopped
	stop := c.gate.stopListeningLocked()
	c.mu.Unlock()

	if err := stop(); err != nil {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "close listener", Err: err})
	}
	c.withdraw()
	c.notify.stateChanged(log.StateEntityAdvertisement, "", old.String(), StateStopped.String(), "")
	c.notify.advertisementStopped(msgStopped)
}

func (c *Controller) onAborted(gen uint64, code radio.ErrorCode) {
	abort := &AbortError{Code: code}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	old := c.state
	c.state = StateAborted
	c.reason = abort.Error()
	stop := c.gate.stopListeningLocked()
	c.mu.Unlock()

	if err := stop(); err != nil {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "close listener", Err: err})
	}
	c.withdraw()
	c.notify.recordError(&AsyncError{Kind: KindSubsystemAbort, Op: "advertise", Err: abort})
	c.notify.stateChanged(log.StateEntityAdvertisement, "", old.String(), StateAborted.String(), abort.Error())
	c.notify.advertisementAborted(abort.Error())
}

// current reports whether gen is still the active generation.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// recoverAsync turns a panic in an event handler into an async exception.
// It must be deferred directly.
func (c *Controller) recoverAsync(op, deviceID string) {
	if r := recover(); r != nil {
		c.reportAsync(&AsyncError{
			Kind:     KindUnexpected,
			Op:       op,
			DeviceID: deviceID,
			Err:      fmt.Errorf("panic: %v", r),
		})
	}
}

// reportAsync is the single boundary where handler failures are surfaced.
func (c *Controller) reportAsync(err error) {
	c.notify.asyncException(asAsync("event", err))
}

func (c *Controller) networkInfoLocked() *discovery.NetworkInfo {
	return &discovery.NetworkInfo{
		SSID:  c.config.SSID,
		Auth:  discovery.AuthWPA2PSK,
		Peers: c.peers.Len(),
		State: c.state.String(),
		Host:  c.localHost,
	}
}

func (c *Controller) announce(ctx context.Context, info *discovery.NetworkInfo) {
	if c.announcer == nil {
		return
	}
	if err := c.announcer.Announce(ctx, info); err != nil {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "announce", Err: err})
	}
}

// updateAnnouncement refreshes the announced peer count for generation gen.
func (c *Controller) updateAnnouncement(gen uint64) {
	if c.announcer == nil {
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.state != StateStarted {
		c.mu.Unlock()
		return
	}
	info := c.networkInfoLocked()
	c.mu.Unlock()

	if err := c.announcer.Update(info); err != nil && !errors.Is(err, discovery.ErrNotFound) {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "update announcement", Err: err})
	}
}

func (c *Controller) withdraw() {
	if c.announcer == nil {
		return
	}
	if err := c.announcer.Withdraw(); err != nil {
		c.reportAsync(&AsyncError{Kind: KindUnexpected, Op: "withdraw announcement", Err: err})
	}
}
