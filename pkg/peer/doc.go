// Package peer tracks the devices currently joined to the hosted network.
//
// A [Registry] maps device IDs to [Session] values. An entry exists exactly
// while its device is connected: sessions are added when a join request is
// accepted and resolved, and removed when the device disconnects or the
// hosted network is reset.
//
// All methods are safe for concurrent use. [Registry.Snapshot] returns deep
// copies taken under the same lock that guards mutation, so status reports
// never observe a half-updated registry.
package peer
