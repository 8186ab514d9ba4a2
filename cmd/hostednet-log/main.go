// Command hostednet-log views and analyzes hosted network event logs.
//
// Event logs are written by hostednet when started with the -event-log flag.
//
// Usage:
//
//	hostednet-log <command> [flags] <file.hlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show per-run statistics
//
// Examples:
//
//	# View only peer events
//	hostednet-log view --category peer session.hlog
//
//	# Everything that happened to one device
//	hostednet-log view --device-id AA:BB session.hlog
//
//	# Keep a single advertisement run
//	hostednet-log filter --run-id 0f1e2d3c-... -o run.hlog session.hlog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hostednet/hostednet-go/cmd/hostednet-log/commands"
)

const usage = `hostednet-log - Hosted Network Event Log Analyzer

Usage:
  hostednet-log <command> [flags] <file.hlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show per-run statistics

Use "hostednet-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set whose usage prints title and the defaults.
func newFlagSet(name, title string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "hostednet-log %s - %s\n\nUsage:\n  hostednet-log %s [flags] <file.hlog>\n\nFlags:\n",
			name, title, name)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg parses args and returns the single log file argument.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View log file in human-readable format")
	category := fs.String("category", "", "Filter by category (lifecycle, peer, message, error)")
	source := fs.String("source", "", "Filter by source (controller, gatekeeper, subsystem)")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	path := pathArg(fs, args)

	filter := commands.ViewFilter{DeviceID: *deviceID}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}
	if *source != "" {
		s, err := commands.ParseSourceFlag(*source)
		if err != nil {
			fail(err)
		}
		filter.Source = &s
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export log file to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fail(fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	if err := commands.RunExport(path, *format, w); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	runID := fs.String("run-id", "", "Filter by advertisement run ID")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (lifecycle, peer, message, error)")
	source := fs.String("source", "", "Filter by source (controller, gatekeeper, subsystem)")
	path := pathArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		RunID:     *runID,
		DeviceID:  *deviceID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
		Source:    *source,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show per-run statistics")
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
