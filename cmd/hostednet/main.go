// Command hostednet runs a hosted network on a simulated radio and drives
// it from an interactive console.
//
// Usage:
//
//	hostednet [flags]
//
// Flags:
//
//	-config string         Configuration file path (YAML)
//	-ssid string           Network SSID (subsystem default if empty)
//	-pass string           Network passphrase (subsystem default if empty)
//	-auto-accept           Accept every join request without asking
//	-start                 Start advertising immediately
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-event-log string      Write captured events to this file (.hlog)
//	-mdns                  Announce the network via mDNS
//	-interface string      Network interface for mDNS (all if empty)
//	-local-host string     Group owner address reported to peers
//	-resolve-delay dur     Simulated link negotiation time (default 200ms)
//
// Examples:
//
//	# Start a network right away and accept everyone
//	hostednet -ssid TESTNET -pass secret123 -auto-accept -start
//
//	# Announce via mDNS and keep an event log for hostednet-log
//	hostednet -config /etc/hostednet.yaml -mdns -event-log session.hlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostednet/hostednet-go/cmd/hostednet/interactive"
	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/hostednet"
	"github.com/hostednet/hostednet-go/pkg/log"
	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

func main() {
	cfg, err := loadConfig(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	consoleCfg := interactive.Config{Network: cfg.Network()}
	if cfg.MDNS {
		consoleCfg.Scanner = discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: cfg.Interface})
	}

	console, err := interactive.New(consoleCfg)
	if err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(console.Stderr(), &slog.HandlerOptions{Level: level}))

	opts := []hostednet.Option{
		hostednet.WithListener(console),
		hostednet.WithPrompt(console),
		hostednet.WithLogger(logger),
	}

	// Captured events go to the event log file and, at debug level, to
	// the console as structured log lines.
	var fileLogger *log.FileLogger
	if cfg.EventLog != "" {
		fileLogger, err = log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer func() {
			if n := fileLogger.Dropped(); n > 0 {
				logger.Warn("events dropped", "count", n)
			}
			_ = fileLogger.Close()
		}()
		logger.Info("event log enabled", "path", cfg.EventLog)
	}
	var trace log.Logger
	if level == slog.LevelDebug {
		trace = log.NewSlogAdapter(logger)
	}
	if fileLogger != nil || trace != nil {
		var file log.Logger
		if fileLogger != nil {
			file = fileLogger
		}
		opts = append(opts, hostednet.WithEventLogger(log.NewMultiLogger(file, trace)))
	}

	if cfg.MDNS {
		announcer := discovery.NewMDNSAnnouncer(discovery.AnnouncerConfig{
			Interface: cfg.Interface,
			TTL:       discovery.DefaultAnnouncerConfig().TTL,
		})
		opts = append(opts, hostednet.WithAnnouncer(announcer))
	}

	sim := simradio.New(
		simradio.WithLocalHost(cfg.LocalHost),
		simradio.WithResolveDelay(cfg.ResolveDelay),
		simradio.WithLogger(logger),
	)
	ctrl := hostednet.New(sim, opts...)
	defer func() {
		if err := ctrl.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()
	console.Attach(ctrl, sim)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.StartOnLaunch {
		console.Execute(ctx, "start")
	}

	console.Run(ctx, cancel)
	return nil
}
