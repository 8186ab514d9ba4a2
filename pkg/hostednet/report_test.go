package hostednet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

func TestReport_NoPublisher(t *testing.T) {
	c, _ := newTestController(t, simradio.New())

	want := "" +
		"/-----------------------------------------------------------------------------------/\n" +
		"Publisher information:\n" +
		"Publisher is not created!\n" +
		"/-----------------------------------------------------------------------------------/\n"
	assert.Equal(t, want, c.Report())
}

func TestReport_NoPeers(t *testing.T) {
	c, l := newTestController(t, simradio.New())
	startedController(t, c, l, testConfig)

	report := c.Report()
	assert.Contains(t, report, "Status............................. : Started\n")
	assert.Contains(t, report, "Connected devices information:\nNo connected devices found\n")
}

func TestReport_ConnectedPeer(t *testing.T) {
	r := simradio.New()
	c, l := newTestController(t, r)
	startedController(t, c, l, testConfig)

	require.NoError(t, r.RequestConnection("AA:BB", "phone", "peer-host"))
	l.wait(t, evConnected, "peer-host")

	want := "" +
		"/-----------------------------------------------------------------------------------/\n" +
		"Publisher information:\n" +
		"Status............................. : Started\n" +
		"*************************************************************************************\n" +
		"Advertisement information:\n" +
		"IsAutonomousGroupOwnerEnabled...... : True\n" +
		"ListenStateDiscoverability......... : Normal\n" +
		"*************************************************************************************\n" +
		"Advertisement's Legacy Settings information:\n" +
		"IsEnabled.......................... : True\n" +
		"Ssid............................... : TESTNET\n" +
		"Passphrase......................... : secret123\n" +
		"*************************************************************************************\n" +
		"Connected devices information:\n" +
		"DeviceId.......................... : AA:BB\n" +
		"ConnectionStatus.................. : Connected\n" +
		"\n" +
		"Endpoint pair information No...... : 0\n" +
		"Local Host Name................... : 192.168.137.1\n" +
		"Local Service Name................ : \n" +
		"Remote Host Name.................. : peer-host\n" +
		"Remote Service Name............... : \n" +
		"\n" +
		"*************************************************************************************\n" +
		"/-----------------------------------------------------------------------------------/\n"

	var buf bytes.Buffer
	require.NoError(t, c.WriteReport(&buf))
	assert.Equal(t, want, buf.String())
}

func TestReport_PeersSortedByDeviceID(t *testing.T) {
	r := simradio.New()
	c, l := newTestController(t, r)
	startedController(t, c, l, testConfig)

	for _, id := range []string{"CC:CC", "AA:AA", "BB:BB"} {
		require.NoError(t, r.RequestConnection(id, id, "host-"+id))
		l.wait(t, evConnected, "host-"+id)
	}

	report := c.Report()
	a := strings.Index(report, "AA:AA")
	b := strings.Index(report, "BB:BB")
	cc := strings.Index(report, "CC:CC")
	assert.True(t, a < b && b < cc, "peers out of order:\n%s", report)
}
