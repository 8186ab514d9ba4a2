package hostednet

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/hostednet/hostednet-go/pkg/log"
	"github.com/hostednet/hostednet-go/pkg/peer"
	"github.com/hostednet/hostednet-go/pkg/radio"
)

type trackedDevice struct {
	device      radio.Device
	unsubscribe func()
}

// gatekeeper handles join requests and device status for one generation.
// Fields below ctx are guarded by Controller.mu.
type gatekeeper struct {
	c          *Controller
	gen        uint64
	ctx        context.Context
	autoAccept bool

	listener            radio.ConnectionListener
	unsubscribeRequests func()
	devices             map[string]trackedDevice

	// pending holds ids between subscription and registration. A true value
	// means the link dropped in that window.
	pending map[string]bool
}

func newGatekeeper(ctx context.Context, c *Controller, gen uint64, autoAccept bool) *gatekeeper {
	return &gatekeeper{
		c:          c,
		gen:        gen,
		ctx:        ctx,
		autoAccept: autoAccept,
		devices:    make(map[string]trackedDevice),
		pending:    make(map[string]bool),
	}
}

// listenLocked subscribes to join requests on l. The returned function
// releases the previously attached listener, if any.
func (g *gatekeeper) listenLocked(l radio.ConnectionListener) func() error {
	previous := g.stopListeningLocked()
	g.listener = l
	g.unsubscribeRequests = l.OnConnectionRequested(g.onRequest)
	return previous
}

// stopListeningLocked detaches the request subscription. Device sessions
// stay tracked. The returned function closes the listener.
func (g *gatekeeper) stopListeningLocked() func() error {
	unsubscribe := g.unsubscribeRequests
	l := g.listener
	g.unsubscribeRequests = nil
	g.listener = nil

	return func() error {
		if unsubscribe != nil {
			unsubscribe()
		}
		if l != nil {
			return l.Close()
		}
		return nil
	}
}

// releaseLocked detaches everything and cancels in-flight resolutions. The
// returned function closes the listener and every device session.
func (g *gatekeeper) releaseLocked() func() error {
	stop := g.stopListeningLocked()
	devices := g.devices
	g.devices = make(map[string]trackedDevice)
	g.pending = make(map[string]bool)

	return func() error {
		err := stop()
		for id, d := range devices {
			d.unsubscribe()
			if closeErr := d.device.Close(); closeErr != nil {
				err = multierr.Append(err, &AsyncError{Kind: KindUnexpected, Op: "close device", DeviceID: id, Err: closeErr})
			}
		}
		return err
	}
}

// onRequest is the subsystem callback. Every request is handled on its own
// goroutine since the Prompt may block.
func (g *gatekeeper) onRequest(req radio.ConnectionRequest) {
	go g.handleRequest(req)
}

func (g *gatekeeper) handleRequest(req radio.ConnectionRequest) {
	c := g.c
	deviceID := req.DeviceID()
	defer c.recoverAsync("connection request", deviceID)

	c.logger.Debug("connection requested", "deviceID", deviceID, "name", req.DeviceName())
	c.notify.logMessage(log.SourceGatekeeper, deviceID, msgRequested)

	accepted := g.autoAccept || c.notify.accept()
	if !accepted {
		req.Decline()
		c.notify.logMessage(log.SourceGatekeeper, deviceID, msgDeclined)
		return
	}

	if err := g.connect(deviceID); err != nil {
		c.reportAsync(err)
	}
}

// connect resolves deviceID and registers the session.
func (g *gatekeeper) connect(deviceID string) error {
	c := g.c

	device, err := c.subsystem.Resolve(g.ctx, deviceID)
	if err != nil {
		if g.ctx.Err() != nil {
			c.logger.Debug("resolution abandoned", "deviceID", deviceID, "error", err)
			return nil
		}
		return &AsyncError{Kind: KindResolution, Op: "resolve", DeviceID: deviceID, Err: err}
	}

	pairs := device.EndpointPairs()
	if len(pairs) == 0 {
		_ = device.Close()
		return &AsyncError{Kind: KindResolution, Op: "resolve", DeviceID: deviceID, Err: ErrNoEndpointPairs}
	}

	c.mu.Lock()
	if _, ok := g.pending[deviceID]; !ok {
		g.pending[deviceID] = false
	}
	c.mu.Unlock()

	unsubscribe := device.OnConnectionStatusChanged(g.onStatusChanged)
	session := peer.NewSession(deviceID, pairs)

	c.mu.Lock()
	lost := g.pending[deviceID] || device.ConnectionStatus() == radio.Disconnected
	delete(g.pending, deviceID)
	if g.gen != c.generation {
		c.mu.Unlock()
		unsubscribe()
		_ = device.Close()
		c.notify.logMessage(log.SourceGatekeeper, deviceID, msgDroppedAfterReset)
		return nil
	}
	if lost {
		c.mu.Unlock()
		unsubscribe()
		_ = device.Close()
		c.notify.logMessage(log.SourceGatekeeper, deviceID, msgDroppedDisconnected)
		return nil
	}
	if err := c.peers.Add(session); err != nil {
		c.mu.Unlock()
		unsubscribe()
		_ = device.Close()
		return &AsyncError{Kind: KindOf(err), Op: "register", DeviceID: deviceID, Err: err}
	}
	g.devices[deviceID] = trackedDevice{device: device, unsubscribe: unsubscribe}
	if c.localHost == "" {
		c.localHost = pairs[0].LocalHostName
	}
	c.mu.Unlock()

	c.notify.stateChanged(log.StateEntityPeer, deviceID, "", radio.Connected.String(), "")
	c.notify.deviceConnected(deviceID, session.RemoteHostName)
	c.updateAnnouncement(g.gen)
	return nil
}

func (g *gatekeeper) onStatusChanged(device radio.Device, status radio.ConnectionStatus) {
	deviceID := device.DeviceID()
	defer g.c.recoverAsync("connection status changed", deviceID)

	if status != radio.Disconnected {
		return
	}
	if err := g.disconnected(deviceID); err != nil {
		g.c.reportAsync(err)
	}
}

// disconnected removes deviceID. An unknown id only produces the
// notification. A device still being registered is marked lost and
// produces nothing, since it was never reported as connected.
func (g *gatekeeper) disconnected(deviceID string) error {
	c := g.c

	c.mu.Lock()
	if g.gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("disconnect from previous run ignored", "deviceID", deviceID)
		return nil
	}
	tracked, ok := g.devices[deviceID]
	if _, pending := g.pending[deviceID]; pending && !ok {
		g.pending[deviceID] = true
		c.mu.Unlock()
		c.logger.Debug("device disconnected before registration", "deviceID", deviceID)
		return nil
	}
	delete(g.devices, deviceID)
	removed := c.peers.Remove(deviceID)
	c.mu.Unlock()

	var err error
	if ok {
		tracked.unsubscribe()
		if closeErr := tracked.device.Close(); closeErr != nil && !errors.Is(closeErr, radio.ErrDeviceNotFound) {
			err = &AsyncError{Kind: KindUnexpected, Op: "close device", DeviceID: deviceID, Err: closeErr}
		}
	}

	if removed {
		c.notify.stateChanged(log.StateEntityPeer, deviceID, radio.Connected.String(), radio.Disconnected.String(), "")
	}
	c.notify.deviceDisconnected(deviceID)
	c.updateAnnouncement(g.gen)
	return err
}
