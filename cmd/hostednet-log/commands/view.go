// Package commands implements the hostednet-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/hostednet/hostednet-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	Source   *log.Source
	DeviceID string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Category: f.Category,
		Source:   f.Source,
		DeviceID: f.DeviceID,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [run:id] SOURCE Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Notification != nil:
		typeLabel = event.Notification.Type.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [run:%s] %s %s\n", ts, shortenRunID(event.RunID), event.Source, typeLabel)
	if event.SSID != "" {
		fmt.Fprintf(w, "  SSID: %s\n", event.SSID)
	}
	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}

	switch {
	case event.Notification != nil:
		if event.Notification.Message != "" {
			fmt.Fprintf(w, "  Message: %s\n", event.Notification.Message)
		}
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Op != "" {
		fmt.Fprintf(w, "  Op: %s\n", err.Op)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "lifecycle":
		return log.CategoryLifecycle, nil
	case "peer":
		return log.CategoryPeer, nil
	case "message":
		return log.CategoryMessage, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be lifecycle, peer, message, or error)", s)
	}
}

// ParseSourceFlag parses a source string from command-line flag (case-insensitive).
func ParseSourceFlag(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "controller":
		return log.SourceController, nil
	case "gatekeeper":
		return log.SourceGatekeeper, nil
	case "subsystem":
		return log.SourceSubsystem, nil
	default:
		return 0, fmt.Errorf("invalid source: %s (must be controller, gatekeeper, or subsystem)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
