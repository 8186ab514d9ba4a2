// Package radio defines the contract between the hosted-network controller and
// the radio subsystem that actually broadcasts the network and negotiates
// links with joining devices.
//
// The subsystem is treated as an opaque event source. It reports three kinds
// of events, each from its own goroutines:
//
//   - publisher status changes (Started, Stopped, Aborted)
//   - inbound connection requests
//   - per-device connection status changes (Connected, Disconnected)
//
// Every event source is observed through a registration method that returns
// an unsubscribe function. Calling the function more than once is allowed.
//
// A simulated implementation lives in package simradio.
package radio
