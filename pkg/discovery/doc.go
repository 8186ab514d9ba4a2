// Package discovery announces hosted networks over mDNS/DNS-SD and browses
// for networks announced by other hosts.
//
// A running hosted network is published as a _hostednet._udp service. The
// instance name defaults to the SSID. TXT records carry:
//   - ssid:  network name
//   - auth:  "wpa2-psk" or "open"
//   - peers: number of connected peers
//   - state: advertisement state (e.g. "Started")
//   - host:  address of the group owner on the hosted network (optional)
//
// The passphrase is never announced.
package discovery
