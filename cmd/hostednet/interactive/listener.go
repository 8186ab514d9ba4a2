package interactive

import (
	"fmt"
	"strings"

	"github.com/hostednet/hostednet-go/pkg/hostednet"
)

var (
	_ hostednet.Listener = (*Console)(nil)
	_ hostednet.Prompt   = (*Console)(nil)
)

// OnDeviceConnected implements hostednet.Listener.
func (c *Console) OnDeviceConnected(remoteHostName string) {
	fmt.Fprintf(c.out, "[EVENT] Device connected: %s\n", remoteHostName)
}

// OnDeviceDisconnected implements hostednet.Listener.
func (c *Console) OnDeviceDisconnected(deviceID string) {
	fmt.Fprintf(c.out, "[EVENT] Device disconnected: %s\n", deviceID)
}

// OnAdvertisementStarted implements hostednet.Listener.
func (c *Console) OnAdvertisementStarted() {
	fmt.Fprintln(c.out, "[EVENT] Advertisement started")
	c.signalAdvertisement()
}

// OnAdvertisementStopped implements hostednet.Listener.
func (c *Console) OnAdvertisementStopped(message string) {
	fmt.Fprintf(c.out, "[EVENT] %s\n", message)
	c.signalAdvertisement()
}

// OnAdvertisementAborted implements hostednet.Listener.
func (c *Console) OnAdvertisementAborted(message string) {
	fmt.Fprintf(c.out, "[EVENT] %s\n", message)
	c.signalAdvertisement()
}

// OnAsyncException implements hostednet.Listener.
func (c *Console) OnAsyncException(message string) {
	fmt.Fprintf(c.out, "[ERROR] %s\n", message)
}

// LogMessage implements hostednet.Listener.
func (c *Console) LogMessage(message string) {
	fmt.Fprintln(c.out, message)
}

// AcceptIncomingConnection asks the user and blocks until the next input
// line answers. Concurrent requests are answered in arrival order.
func (c *Console) AcceptIncomingConnection() bool {
	answer := make(chan bool, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.pending = append(c.pending, answer)
	first := len(c.pending) == 1
	c.mu.Unlock()

	fmt.Fprintln(c.out, "Incoming connection request. Accept? (y/N)")
	if first {
		c.setPrompt(questionPrompt)
	}

	select {
	case ok := <-answer:
		return ok
	case <-c.done:
		return false
	}
}

// answer hands line to the oldest waiting prompt. It reports false when no
// prompt is waiting.
func (c *Console) answer(line string) bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	ch := c.pending[0]
	c.pending = c.pending[1:]
	rest := len(c.pending)
	c.mu.Unlock()

	ch <- isYes(line)
	if rest == 0 {
		c.setPrompt(commandPrompt)
	}
	return true
}

func isYes(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "y") || strings.HasPrefix(s, "Y")
}

func (c *Console) signalAdvertisement() {
	select {
	case c.advertisement <- struct{}{}:
	default:
	}
}

func (c *Console) drainAdvertisement() {
	select {
	case <-c.advertisement:
	default:
	}
}
