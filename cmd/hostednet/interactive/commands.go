package interactive

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hostednet/hostednet-go/pkg/hostednet"
)

// cmdStart starts advertising and waits for the outcome.
func (c *Console) cmdStart(ctx context.Context) {
	c.drainAdvertisement()
	if err := c.ctrl.Start(ctx, c.cfg.Network); err != nil {
		fmt.Fprintf(c.out, "Start failed: %v\n", err)
		return
	}
	if !c.waitAdvertisement() || c.ctrl.State() != hostednet.StateStarted {
		return
	}

	cfg := c.ctrl.Config()
	fmt.Fprintf(c.out, "  SSID:       %s\n", cfg.SSID)
	fmt.Fprintf(c.out, "  Passphrase: %s\n", cfg.Passphrase)
	fmt.Fprintf(c.out, "  State:      %s\n", c.ctrl.State())
}

// cmdStop stops advertising and waits for the outcome.
func (c *Console) cmdStop() {
	c.drainAdvertisement()
	if err := c.ctrl.Stop(); err != nil {
		// The listener already printed the bad status message.
		fmt.Fprintf(c.out, "Stop failed: %v\n", err)
		return
	}
	c.waitAdvertisement()
}

// waitAdvertisement blocks until the next advertisement notification.
func (c *Console) waitAdvertisement() bool {
	select {
	case <-c.advertisement:
		return true
	case <-time.After(c.cfg.WaitTimeout):
		fmt.Fprintf(c.out, "No answer from the radio after %s (state %s)\n", c.cfg.WaitTimeout, c.ctrl.State())
		return false
	}
}

func (c *Console) cmdReset() {
	if err := c.ctrl.Reset(); err != nil {
		fmt.Fprintf(c.out, "Reset finished with errors: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Reset")
}

// cmdInfo prints the status report.
func (c *Console) cmdInfo() {
	if err := c.ctrl.WriteReport(c.out); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *Console) cmdPeers() {
	peers := c.ctrl.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(c.out, "No peers connected")
		return
	}

	fmt.Fprintf(c.out, "\nConnected Peers (%d):\n", len(peers))
	fmt.Fprintln(c.out, "-------------------------------------------")
	for _, p := range peers {
		fmt.Fprintf(c.out, "  ID: %s\n", p.DeviceID)
		fmt.Fprintf(c.out, "      Host: %s\n", p.RemoteHostName)
		fmt.Fprintf(c.out, "      Since: %s\n", p.ConnectedAt.Format("15:04:05"))
		fmt.Fprintln(c.out)
	}
}

// cmdInterfaces lists the local network interfaces.
func (c *Console) cmdInterfaces() {
	ifaces, err := net.Interfaces()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	for _, iface := range ifaces {
		fmt.Fprintf(c.out, "  %s (%s)\n", iface.Name, iface.Flags)
		if len(iface.HardwareAddr) > 0 {
			fmt.Fprintf(c.out, "      MAC: %s\n", iface.HardwareAddr)
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			fmt.Fprintf(c.out, "      Addr: %s\n", a)
		}
	}
}

func (c *Console) cmdSSID(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: ssid <ssid>")
		return
	}
	next := c.cfg.Network
	next.SSID = strings.Join(args, " ")
	if err := next.Validate(); err != nil {
		fmt.Fprintf(c.out, "Invalid SSID: %v\n", err)
		return
	}
	c.cfg.Network = next
	fmt.Fprintf(c.out, "SSID set to %q (used on next start)\n", next.SSID)
}

func (c *Console) cmdPass(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: pass <passphrase>")
		return
	}
	next := c.cfg.Network
	next.Passphrase = strings.Join(args, " ")
	if err := next.Validate(); err != nil {
		fmt.Fprintf(c.out, "Invalid passphrase: %v\n", err)
		return
	}
	c.cfg.Network = next
	fmt.Fprintln(c.out, "Passphrase set (used on next start)")
}

func (c *Console) cmdAutoAccept(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: autoaccept <0|1>")
		return
	}
	v, err := strconv.ParseBool(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid value: %s (use 0 or 1)\n", args[0])
		return
	}
	c.cfg.Network.AutoAccept = v
	fmt.Fprintf(c.out, "Auto accept: %t (used on next start)\n", v)
}

// cmdJoin simulates a peer joining, with a passphrase for legacy clients.
func (c *Console) cmdJoin(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: join <device-id> <host> [passphrase]")
		return
	}

	var err error
	if len(args) > 2 {
		err = c.radio.Join(args[0], args[1], strings.Join(args[2:], " "))
	} else {
		err = c.radio.RequestConnection(args[0], args[0], args[1])
	}
	if err != nil {
		fmt.Fprintf(c.out, "Join failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Join requested by %s\n", args[0])
}

func (c *Console) cmdLeave(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: leave <device-id>")
		return
	}
	if err := c.radio.Disconnect(args[0]); err != nil {
		fmt.Fprintf(c.out, "Leave failed: %v\n", err)
	}
}

func (c *Console) cmdRadio(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintf(c.out, "Usage: radio on|off (currently %s)\n", onOff(c.radio.Enabled()))
		return
	}
	if err := c.radio.SetRadioEnabled(args[0] == "on"); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Radio %s\n", args[0])
}

// cmdScan browses for hosted networks announced via mDNS.
func (c *Console) cmdScan(ctx context.Context) {
	if c.cfg.Scanner == nil {
		fmt.Fprintln(c.out, "mDNS is disabled (start with -mdns)")
		return
	}

	fmt.Fprintf(c.out, "Scanning for %s...\n", c.cfg.ScanTimeout)
	scanCtx, cancel := context.WithTimeout(ctx, c.cfg.ScanTimeout)
	defer cancel()

	found, err := c.cfg.Scanner.Scan(scanCtx)
	if err != nil {
		fmt.Fprintf(c.out, "Scan failed: %v\n", err)
		return
	}
	if len(found) == 0 {
		fmt.Fprintln(c.out, "No hosted networks found")
		return
	}

	for _, svc := range found {
		fmt.Fprintf(c.out, "  %s\n", svc.InstanceName)
		fmt.Fprintf(c.out, "      SSID: %s (%s)\n", svc.SSID, svc.Auth)
		fmt.Fprintf(c.out, "      State: %s, peers: %d\n", svc.State, svc.Peers)
		if svc.Host != "" {
			fmt.Fprintf(c.out, "      Group owner: %s\n", svc.Host)
		}
		if len(svc.Addresses) > 0 {
			fmt.Fprintf(c.out, "      Addresses: %s\n", strings.Join(svc.Addresses, ", "))
		}
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
