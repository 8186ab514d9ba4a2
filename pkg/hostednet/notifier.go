package hostednet

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hostednet/hostednet-go/pkg/log"
)

// notifier delivers notifications to the registered Listener and captures
// each one as a log.Event. It must not be called with Controller.mu held.
type notifier struct {
	logger *slog.Logger
	events log.Logger

	mu       sync.RWMutex
	listener Listener
	prompt   Prompt
	runID    string
	ssid     string
}

func newNotifier(logger *slog.Logger, events log.Logger) *notifier {
	if events == nil {
		events = log.NoopLogger{}
	}
	return &notifier{logger: logger, events: events}
}

func (n *notifier) setListener(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listener = l
}

func (n *notifier) setPrompt(p Prompt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompt = p
}

// setRun tags subsequent events with an advertisement run.
func (n *notifier) setRun(runID, ssid string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runID = runID
	n.ssid = ssid
}

func (n *notifier) capture(e log.Event) {
	n.mu.RLock()
	e.RunID = n.runID
	e.SSID = n.ssid
	n.mu.RUnlock()

	e.Timestamp = time.Now()
	n.events.Log(e)
}

// deliver captures the notification and invokes call on the listener. A
// panicking listener is reported as an async exception.
func (n *notifier) deliver(typ log.NotificationType, source log.Source, deviceID, message string, call func(Listener)) {
	n.logger.Debug("notify", "type", typ.String(), "deviceID", deviceID, "message", message)
	n.capture(log.Event{
		Category: notificationCategory(typ),
		Source:   source,
		DeviceID: deviceID,
		Notification: &log.NotificationEvent{
			Type:    typ,
			Message: message,
		},
	})

	n.mu.RLock()
	l := n.listener
	n.mu.RUnlock()
	if l == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			if typ == log.NotificationAsyncException {
				n.logger.Error("listener panicked while reporting a failure", "panic", r)
				return
			}
			n.asyncException(&AsyncError{
				Kind:     KindUnexpected,
				Op:       "listener " + typ.String(),
				DeviceID: deviceID,
				Err:      fmt.Errorf("panic: %v", r),
			})
		}
	}()
	call(l)
}

func notificationCategory(typ log.NotificationType) log.Category {
	switch typ {
	case log.NotificationDeviceConnected, log.NotificationDeviceDisconnected:
		return log.CategoryPeer
	case log.NotificationAsyncException:
		return log.CategoryError
	case log.NotificationLogMessage:
		return log.CategoryMessage
	default:
		return log.CategoryLifecycle
	}
}

func (n *notifier) deviceConnected(deviceID, remoteHostName string) {
	n.deliver(log.NotificationDeviceConnected, log.SourceGatekeeper, deviceID, remoteHostName,
		func(l Listener) { l.OnDeviceConnected(remoteHostName) })
}

func (n *notifier) deviceDisconnected(deviceID string) {
	n.deliver(log.NotificationDeviceDisconnected, log.SourceGatekeeper, deviceID, deviceID,
		func(l Listener) { l.OnDeviceDisconnected(deviceID) })
}

func (n *notifier) advertisementStarted() {
	n.deliver(log.NotificationAdvertisementStarted, log.SourceController, "", "",
		func(l Listener) { l.OnAdvertisementStarted() })
}

func (n *notifier) advertisementStopped(message string) {
	n.deliver(log.NotificationAdvertisementStopped, log.SourceController, "", message,
		func(l Listener) { l.OnAdvertisementStopped(message) })
}

func (n *notifier) advertisementAborted(message string) {
	n.deliver(log.NotificationAdvertisementAborted, log.SourceController, "", message,
		func(l Listener) { l.OnAdvertisementAborted(message) })
}

func (n *notifier) logMessage(source log.Source, deviceID, message string) {
	n.deliver(log.NotificationLogMessage, source, deviceID, message,
		func(l Listener) { l.LogMessage(message) })
}

// asyncException records err and reports it to the listener.
func (n *notifier) asyncException(err *AsyncError) {
	n.recordError(err)
	message := err.Error()
	n.deliver(log.NotificationAsyncException, log.SourceController, err.DeviceID, message,
		func(l Listener) { l.OnAsyncException(message) })
}

// recordError logs and captures err without notifying the listener.
func (n *notifier) recordError(err *AsyncError) {
	n.logger.Warn("async failure",
		"kind", err.Kind.String(),
		"op", err.Op,
		"deviceID", err.DeviceID,
		"error", err.Err)
	n.capture(log.Event{
		Category: log.CategoryError,
		Source:   log.SourceController,
		DeviceID: err.DeviceID,
		Error: &log.ErrorEventData{
			Kind:    err.Kind.String(),
			Message: err.Err.Error(),
			Op:      err.Op,
		},
	})
}

func (n *notifier) stateChanged(entity log.StateEntity, deviceID, oldState, newState, reason string) {
	n.logger.Debug("state changed",
		"entity", entity.String(),
		"deviceID", deviceID,
		"old", oldState,
		"new", newState,
		"reason", reason)
	n.capture(log.Event{
		Category: log.CategoryLifecycle,
		Source:   log.SourceController,
		DeviceID: deviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// accept asks the registered Prompt. Without a Prompt requests are accepted.
func (n *notifier) accept() bool {
	n.mu.RLock()
	p := n.prompt
	n.mu.RUnlock()

	if p == nil {
		return true
	}
	return p.AcceptIncomingConnection()
}
