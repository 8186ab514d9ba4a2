package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hostednet/hostednet-go/pkg/hostednet"
	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

// Config holds the command configuration. Every field can be set in the
// YAML file and overridden on the command line.
type Config struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
	AutoAccept bool   `yaml:"auto_accept"`

	// StartOnLaunch starts advertising before the console opens.
	StartOnLaunch bool `yaml:"start"`

	LogLevel string `yaml:"log_level"`

	// EventLog is the path of the CBOR event capture file. Empty disables it.
	EventLog string `yaml:"event_log"`

	// MDNS announces the running network as _hostednet._udp.
	MDNS      bool   `yaml:"mdns"`
	Interface string `yaml:"interface"`

	// Simulated radio settings.
	LocalHost    string        `yaml:"local_host"`
	ResolveDelay time.Duration `yaml:"resolve_delay"`
}

// registerFlags binds the config fields to fs. The current field values
// become the flag defaults, so flags override whatever was loaded before.
func registerFlags(fs *flag.FlagSet, cfg *Config, path *string) {
	fs.StringVar(path, "config", *path, "Configuration file path (YAML)")
	fs.StringVar(&cfg.SSID, "ssid", cfg.SSID, "Network SSID (subsystem default if empty)")
	fs.StringVar(&cfg.Passphrase, "pass", cfg.Passphrase, "Network passphrase (subsystem default if empty)")
	fs.BoolVar(&cfg.AutoAccept, "auto-accept", cfg.AutoAccept, "Accept every join request without asking")
	fs.BoolVar(&cfg.StartOnLaunch, "start", cfg.StartOnLaunch, "Start advertising immediately")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.EventLog, "event-log", cfg.EventLog, "Write captured events to this file (.hlog)")
	fs.BoolVar(&cfg.MDNS, "mdns", cfg.MDNS, "Announce the network via mDNS")
	fs.StringVar(&cfg.Interface, "interface", cfg.Interface, "Network interface for mDNS (all if empty)")
	fs.StringVar(&cfg.LocalHost, "local-host", cfg.LocalHost, "Group owner address reported to peers")
	fs.DurationVar(&cfg.ResolveDelay, "resolve-delay", cfg.ResolveDelay, "Simulated link negotiation time")
}

// loadConfig parses args, reads the YAML file named by -config and applies
// the flags on top of it.
func loadConfig(name string, args []string) (Config, error) {
	var cfg Config
	var path string

	// First pass only finds the config file.
	probe := flag.NewFlagSet(name, flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	registerFlags(probe, &Config{}, &path)
	// Errors surface again, with usage, in the second pass.
	_ = probe.Parse(args)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	registerFlags(fs, &cfg, &path)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	return cfg, validateConfig(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LocalHost == "" {
		cfg.LocalHost = simradio.DefaultLocalHost
	}
	if cfg.ResolveDelay == 0 {
		cfg.ResolveDelay = 200 * time.Millisecond
	}
}

func validateConfig(cfg Config) error {
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.ResolveDelay < 0 {
		return fmt.Errorf("resolve delay must not be negative, got %s", cfg.ResolveDelay)
	}
	return cfg.Network().Validate()
}

// Network returns the controller settings.
func (c Config) Network() hostednet.NetworkConfig {
	return hostednet.NetworkConfig{
		SSID:       c.SSID,
		Passphrase: c.Passphrase,
		AutoAccept: c.AutoAccept,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}
