// Package log captures structured lifecycle events of a hosted network.
//
// It is separate from operational logging (slog). Event capture records every
// notification, state transition and asynchronous error the controller
// produces, so a session can be replayed and analysed afterwards.
//
// # Basic Usage
//
//	// For development: mirror events to the console via slog
//	var events log.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: append to a CBOR file
//	file, _ := log.NewFileLogger("/var/log/hostednet/session.hlog")
//
//	// Both
//	events = log.NewMultiLogger(events, file)
//
// # File Format
//
// Log files are a stream of CBOR encoded [Event] values using integer keys.
// The hostednet-log tool views and summarises them.
package log
