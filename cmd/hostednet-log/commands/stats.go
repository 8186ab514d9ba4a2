package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hostednet/hostednet-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsBySource   map[log.Source]int
	Runs             map[string]*RunSummary
	ErrorsByKind     map[string]int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RunSummary holds statistics for a single advertisement run.
type RunSummary struct {
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	SSID          string
	Connected     int
	Disconnected  int
	Aborted       bool
	PeakPeerCount int

	peers map[string]bool
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsBySource:   make(map[log.Source]int),
		Runs:             make(map[string]*RunSummary),
		ErrorsByKind:     make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsBySource[event.Source]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Error != nil {
			stats.ErrorsByKind[event.Error.Kind]++
		}

		// Events captured before the first Start carry no run.
		if event.RunID == "" {
			continue
		}
		run, ok := stats.Runs[event.RunID]
		if !ok {
			run = &RunSummary{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				peers:     make(map[string]bool),
			}
			stats.Runs[event.RunID] = run
		}
		run.Events++
		if event.Timestamp.After(run.LastSeen) {
			run.LastSeen = event.Timestamp
		}
		if event.SSID != "" && run.SSID == "" {
			run.SSID = event.SSID
		}
		countRunEvent(run, event)
	}

	return stats, nil
}

func countRunEvent(run *RunSummary, event log.Event) {
	if n := event.Notification; n != nil {
		switch n.Type {
		case log.NotificationAdvertisementAborted:
			run.Aborted = true
		case log.NotificationDeviceDisconnected:
			run.Disconnected++
		}
	}

	sc := event.StateChange
	if sc == nil || sc.Entity != log.StateEntityPeer || event.DeviceID == "" {
		return
	}
	switch sc.NewState {
	case "Connected":
		run.Connected++
		run.peers[event.DeviceID] = true
		if len(run.peers) > run.PeakPeerCount {
			run.PeakPeerCount = len(run.peers)
		}
	case "Disconnected":
		delete(run.peers, event.DeviceID)
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Hosted Network Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryLifecycle, log.CategoryPeer, log.CategoryMessage, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Source:")
	for _, src := range []log.Source{log.SourceController, log.SourceGatekeeper, log.SourceSubsystem} {
		if count := stats.EventsBySource[src]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", src.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Runs: %d\n", len(stats.Runs))
	if len(stats.Runs) > 0 {
		type runInfo struct {
			id    string
			stats *RunSummary
		}
		runs := make([]runInfo, 0, len(stats.Runs))
		for id, rs := range stats.Runs {
			runs = append(runs, runInfo{id, rs})
		}
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].stats.FirstSeen.Before(runs[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, r := range runs {
			duration := r.stats.LastSeen.Sub(r.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenRunID(r.id), r.stats.Events, duration)
			if r.stats.SSID != "" {
				fmt.Fprintf(w, "           SSID: %s\n", r.stats.SSID)
			}
			fmt.Fprintf(w, "           Peers: %d connected, %d disconnected, peak %d\n",
				r.stats.Connected, r.stats.Disconnected, r.stats.PeakPeerCount)
			if r.stats.Aborted {
				fmt.Fprintln(w, "           Aborted")
			}
		}
	}

	if len(stats.ErrorsByKind) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors by Kind:")
		kinds := make([]string, 0, len(stats.ErrorsByKind))
		for k := range stats.ErrorsByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-18s %d\n", k+":", stats.ErrorsByKind[k])
		}
	}
}
