package hostednet

import (
	"fmt"
	"io"
	"strings"

	"github.com/hostednet/hostednet-go/pkg/radio"
)

const (
	reportSepBig   = "/-----------------------------------------------------------------------------------/"
	reportSepSmall = "*************************************************************************************"
)

// Report returns the status report as a string.
func (c *Controller) Report() string {
	var b strings.Builder
	_ = c.WriteReport(&b)
	return b.String()
}

// WriteReport writes a status report covering the publisher, the
// advertisement settings and every connected peer. Labels and their order
// are stable so the output can be scraped.
func (c *Controller) WriteReport(w io.Writer) error {
	c.mu.Lock()
	pub := c.publisher
	peers := c.peers.Snapshot()
	c.mu.Unlock()

	var r report
	r.text(reportSepBig)
	r.text("Publisher information:")
	if pub == nil {
		r.text("Publisher is not created!")
		r.text(reportSepBig)
		_, err := io.WriteString(w, r.String())
		return err
	}

	adv := pub.Advertisement()
	r.field("Status.............................", pub.Status())
	r.text(reportSepSmall)

	r.text("Advertisement information:")
	r.field("IsAutonomousGroupOwnerEnabled......", boolText(adv.AutonomousGroupOwnerEnabled))
	r.field("ListenStateDiscoverability.........", adv.ListenStateDiscoverability)
	r.text(reportSepSmall)

	r.text("Advertisement's Legacy Settings information:")
	r.field("IsEnabled..........................", boolText(adv.Legacy.Enabled))
	r.field("Ssid...............................", adv.Legacy.SSID)
	r.field("Passphrase.........................", adv.Legacy.Passphrase)
	r.text(reportSepSmall)

	r.text("Connected devices information:")
	if len(peers) == 0 {
		r.text("No connected devices found")
	}
	for _, s := range peers {
		r.field("DeviceId..........................", s.DeviceID)
		r.field("ConnectionStatus..................", s.ConnectionStatus)
		for i, p := range s.EndpointPairs {
			r.endpointPair(i, p)
		}
	}
	r.text(reportSepSmall)
	r.text(reportSepBig)

	_, err := io.WriteString(w, r.String())
	return err
}

type report struct {
	strings.Builder
}

func (r *report) text(s string) {
	r.WriteString(s)
	r.WriteByte('\n')
}

func (r *report) field(label string, value any) {
	fmt.Fprintf(&r.Builder, "%s : %v\n", label, value)
}

func (r *report) endpointPair(i int, p radio.EndpointPair) {
	r.text("")
	r.field("Endpoint pair information No......", i)
	r.field("Local Host Name...................", p.LocalHostName)
	r.field("Local Service Name................", p.LocalServiceName)
	r.field("Remote Host Name..................", p.RemoteHostName)
	r.field("Remote Service Name...............", p.RemoteServiceName)
	r.text("")
}

func boolText(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
