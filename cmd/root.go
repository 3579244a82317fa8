// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	flag "github.com/spf13/pflag"

	"nbclient/config"
	"nbclient/internal/core"
	"nbclient/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X nbclient/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected mode.  It returns an error
// only for problems found before the mode starts or for a mode that
// could not start at all.
func Execute(ctx context.Context, args []string) error {
	var (
		fl         = config.Default() // flag targets
		configPath string
	)
	fs := flag.NewFlagSet("nbclient", flag.ContinueOnError)

	fs.StringVar(&configPath, "config", "", "YAML config file")

	// ── echo peer ────────────────────────────────────────────────
	fs.BoolVarP(&fl.Listen, "listen", "l", false, "Run as an echo peer")
	fs.IntVarP(&fl.LocalPort, "port", "p", 0, "Echo peer listen port")
	fs.BoolVarP(&fl.KeepOpen, "keep-open", "k", false, "Echo peer serves multiple clients (with -l)")

	// ── client ───────────────────────────────────────────────────
	fs.IntVar(&fl.MaxPacketSize, "max-packet", fl.MaxPacketSize, "Receive buffer size and largest read")
	fs.DurationVar(&fl.WorkPeriod, "work-period", fl.WorkPeriod, "Interval between simulated jobs")
	fs.DurationVar(&fl.PollPeriod, "poll-period", fl.PollPeriod, "Interval between command polls")
	fs.DurationVar(&fl.SettleDelay, "settle", fl.SettleDelay, "Delay before reading input")
	fs.DurationVar(&fl.DialTimeout, "dial-timeout", fl.DialTimeout, "Connect timeout")
	fs.IntVar(&fl.SourcePort, "source-port", 0, "Bind outgoing connections to this local port")
	fs.DurationVar(&fl.KeepAlive, "keep-alive", 0, "TCP keep-alive period (0 = OS default, negative = off)")
	fs.StringVar(&fl.ConnectMessage, "connect-msg", fl.ConnectMessage, "Hex message sent after connecting")
	fs.StringVar(&fl.WriteMessage, "write-msg", fl.WriteMessage, "Hex message sent by 'w'")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fl.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&fl.Stats, "stats", false, "Print metrics on exit")
	fs.BoolVar(&fl.DryRun, "dry-run", false, "Validate configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("nbclient %s\n", version)
		return nil
	}

	// ── layer sources: defaults, file, env, flags ────────────────
	cfg := config.Default()
	if configPath != "" {
		if err := config.LoadFile(configPath, cfg); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)
	fs.Visit(func(f *flag.Flag) { applyFlag(cfg, fl, f.Name) })

	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		printPlan(cfg)
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// applyFlag copies one explicitly set flag from fl onto cfg.
func applyFlag(cfg, fl *config.Config, name string) {
	switch name {
	case "listen":
		cfg.Listen = fl.Listen
	case "port":
		cfg.LocalPort = fl.LocalPort
	case "keep-open":
		cfg.KeepOpen = fl.KeepOpen
	case "max-packet":
		cfg.MaxPacketSize = fl.MaxPacketSize
	case "work-period":
		cfg.WorkPeriod = fl.WorkPeriod
	case "poll-period":
		cfg.PollPeriod = fl.PollPeriod
	case "settle":
		cfg.SettleDelay = fl.SettleDelay
	case "dial-timeout":
		cfg.DialTimeout = fl.DialTimeout
	case "source-port":
		cfg.SourcePort = fl.SourcePort
	case "keep-alive":
		cfg.KeepAlive = fl.KeepAlive
	case "connect-msg":
		cfg.ConnectMessage = fl.ConnectMessage
	case "write-msg":
		cfg.WriteMessage = fl.WriteMessage
	case "verbose":
		cfg.Verbose = fl.Verbose
	case "stats":
		cfg.Stats = fl.Stats
	case "dry-run":
		cfg.DryRun = fl.DryRun
	}
}

func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		return nil
	case 2:
		if cfg.Listen {
			return fmt.Errorf("listen mode takes no destination")
		}
		port, err := strconv.Atoi(remaining[1])
		if err != nil {
			return fmt.Errorf("invalid port %q", remaining[1])
		}
		cfg.Host, cfg.Port = remaining[0], port
		return nil
	case 1:
		return fmt.Errorf("port required after %q", remaining[0])
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
}

func printPlan(cfg *config.Config) {
	if cfg.Listen {
		fmt.Printf("echo peer on port %d (keep-open=%v)\n", cfg.LocalPort, cfg.KeepOpen)
		return
	}
	target := "none (use 'c <host> <port>')"
	if cfg.Host != "" {
		target = util.FormatAddr(cfg.Host, cfg.Port)
	}
	fmt.Printf("client: connect=%s max-packet=%d work=%v poll=%v\n",
		target, cfg.MaxPacketSize, cfg.WorkPeriod, cfg.PollPeriod)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `nbclient – non-blocking TCP client v%s

An event-loop driven TCP client controlled by single-letter commands,
with a simulated background job.

Usage:
  nbclient [options] [<host> <port>]          Client (optionally auto-connect)
  nbclient -l -p <port> [-k]                  Echo peer

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Commands (one per line):
  c <host> <port>    connect, then send the connect message
  r <count>          read exactly count bytes
  w                  send the write message
  q                  pause the simulated job until the next c, r or w
  x                  stop

Examples:
  nbclient -l -p 5555 -k                      Echo peer for testing
  nbclient 127.0.0.1 5555                     Connect on start
  nbclient --work-period 5s -vv               Slower jobs, metrics on exit
`)
}
