// Package interactive provides the interactive command-line interface
// for the hosted network controller.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/hostednet/hostednet-go/pkg/discovery"
	"github.com/hostednet/hostednet-go/pkg/hostednet"
	"github.com/hostednet/hostednet-go/pkg/radio/simradio"
)

const (
	commandPrompt  = "hostednet> "
	questionPrompt = "accept? (y/N)> "
)

// Scanner finds hosted networks announced nearby.
type Scanner interface {
	Scan(ctx context.Context) ([]*discovery.NetworkService, error)
}

// Config configures the console.
type Config struct {
	// Network holds the settings used by the next start command.
	Network hostednet.NetworkConfig

	// Scanner backs the scan command. Nil disables it.
	Scanner Scanner

	// ScanTimeout bounds the scan command. Default 3s.
	ScanTimeout time.Duration

	// WaitTimeout bounds how long start and stop wait for the outcome.
	// Default 5s.
	WaitTimeout time.Duration
}

// Console drives a Controller from the terminal. It is the controller's
// Listener and Prompt at the same time: notifications are printed, and
// join requests are answered by the next line the user types.
type Console struct {
	ctrl  *hostednet.Controller
	radio *simradio.Radio
	cfg   Config
	rl    *readline.Instance
	out   io.Writer

	// advertisement receives a signal on every started, stopped or aborted
	// notification so start and stop can wait for the outcome.
	advertisement chan struct{}

	mu      sync.Mutex
	pending []chan bool
	done    chan struct{}
	closed  bool
}

// New creates a console reading from the terminal. Call Attach before Run.
func New(cfg Config) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          commandPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(cfg, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(cfg Config, out io.Writer) *Console {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 3 * time.Second
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 5 * time.Second
	}
	return &Console{
		cfg:           cfg,
		out:           out,
		advertisement: make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Attach connects the console to the controller and the radio it drives.
func (c *Console) Attach(ctrl *hostednet.Controller, r *simradio.Radio) {
	c.ctrl = ctrl
	c.radio = r
}

// Stdout returns a writer that coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Stderr returns a writer that coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	if c.rl != nil {
		return c.rl.Stderr()
	}
	return c.out
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends or ctx is done; cancel is called on the way out.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.shutdown()
	defer cancel()

	// Closing the terminal unblocks Readline when ctx ends first.
	go func() {
		select {
		case <-ctx.Done():
			_ = c.rl.Close()
		case <-c.done:
		}
	}()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			return
		}

		if c.execute(ctx, line) {
			return
		}
	}
}

// Execute runs one command line as if it had been typed.
func (c *Console) Execute(ctx context.Context, line string) {
	c.execute(ctx, line)
}

// execute runs one input line and reports whether the console should exit.
func (c *Console) execute(ctx context.Context, line string) (quit bool) {
	if c.answer(line) {
		return false
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "start":
		c.cmdStart(ctx)

	case "stop":
		c.cmdStop()

	case "reset":
		c.cmdReset()

	case "info", "status":
		c.cmdInfo()

	case "interfaces":
		c.cmdInterfaces()

	case "ssid":
		c.cmdSSID(args)

	case "pass":
		c.cmdPass(args)

	case "autoaccept":
		c.cmdAutoAccept(args)

	case "peers":
		c.cmdPeers()

	case "join":
		c.cmdJoin(args)

	case "leave":
		c.cmdLeave(args)

	case "radio":
		c.cmdRadio(args)

	case "scan":
		c.cmdScan(ctx)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s\n", cmd)
		c.printHelp()
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Hosted Network Commands:
  Advertisement:
    start                 - Start advertising the network
    stop                  - Stop advertising
    reset                 - Stop and release every peer
    info                  - Show the status report
    peers                 - List connected peers

  Settings (used by the next start):
    ssid <ssid>           - Set the SSID
    pass <passphrase>     - Set the passphrase
    autoaccept <0|1>      - Accept join requests without asking

  Simulation:
    join <id> <host> [passphrase] - Simulate a peer joining
    leave <id>            - Simulate a peer leaving
    radio on|off          - Switch the radio

  Network:
    interfaces            - List local network interfaces
    scan                  - Browse for hosted networks via mDNS

  General:
    help                  - Show this help
    quit                  - Exit`)
}

// shutdown releases pending prompts and the terminal.
func (c *Console) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	c.mu.Unlock()

	if c.rl != nil {
		_ = c.rl.Close()
	}
}

func (c *Console) setPrompt(p string) {
	if c.rl == nil {
		return
	}
	c.rl.SetPrompt(p)
	c.rl.Refresh()
}
