// Package hostednet manages the lifecycle of a locally originated hosted
// network (soft access point).
//
// A Controller starts and stops the advertisement through a radio.Subsystem,
// accepts or declines inbound join requests, and keeps the set of connected
// peers in a peer.Registry. All outcomes are reported asynchronously to a
// single registered Listener; a Prompt decides join requests when automatic
// acceptance is off.
//
// # State machine
//
//	Idle ──Start──▶ Starting ──Started──▶ Started ──Stop──▶ Stopping ──Stopped──▶ Stopped
//	                    │                    │
//	                    └──────Aborted───────┴──▶ Aborted
//
// Reset returns to Idle from any state, releasing the publisher, the
// connection listener and every device session. Start always resets first.
//
// # Concurrency
//
// Status, connection-request and device-status callbacks arrive on subsystem
// goroutines. A single mutex guards the configuration, state, publisher and
// registry. Listener and Prompt calls are never made while it is held.
//
// Every Start and Reset begins a new generation. Work started under an older
// generation (in-flight resolutions, late status events) is discarded, so a
// peer that finishes resolving after a Reset is never registered.
//
// # Errors
//
// Failures inside event handlers never propagate to the subsystem. They are
// wrapped in an *AsyncError carrying an ErrorKind and delivered through
// Listener.OnAsyncException. Recovered panics are reported the same way.
package hostednet
