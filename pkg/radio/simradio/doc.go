// Package simradio provides an in-process radio subsystem implementing the
// interfaces in package radio.
//
// The simulated radio behaves like a real peer-to-peer stack from the
// controller's point of view: status and connection events are delivered
// asynchronously on subsystem goroutines, publishers generate a default
// SSID and passphrase, and a single radio can host only one started
// advertisement at a time.
//
// Peers are injected with RequestConnection or Join (legacy WPA2-PSK), and
// removed with Disconnect. SetRadioEnabled(false) aborts the active
// advertisement and drops every connected peer, mirroring a radio being
// switched off.
package simradio
