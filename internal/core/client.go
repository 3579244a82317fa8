package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"nbclient/internal/client"
	"nbclient/internal/dispatch"
	"nbclient/internal/input"
	"nbclient/internal/loop"
	"nbclient/internal/mailbox"
	"nbclient/internal/metrics"
	"nbclient/internal/report"
	"nbclient/internal/transport"
	"nbclient/internal/work"
	"nbclient/util"
)

// ClientMode runs the interactive client: the event loop with its
// network client, work scheduler and command dispatcher on one
// goroutine, and the input monitor on another.
type ClientMode struct {
	Dialer  transport.Dialer
	Options client.Options

	// Host and Port, when set, are connected to as soon as the
	// dispatcher first polls.
	Host string
	Port string

	WorkPeriod  time.Duration
	PollPeriod  time.Duration
	SettleDelay time.Duration

	Logger  *util.Logger
	Metrics *metrics.Collector
	Stats   bool // print metrics on exit

	// Input defaults to a line source on os.Stdin.  Stdout receives
	// reports and the usage banner; Stderr receives the metrics
	// summary.  Override in tests.
	Input  input.LineSource
	Stdout io.Writer
	Stderr io.Writer
}

func (m *ClientMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

func (m *ClientMode) stderr() io.Writer {
	if m.Stderr != nil {
		return m.Stderr
	}
	return os.Stderr
}

// Run wires the components, runs the loop until a stop command drains
// it or ctx ends, then closes the connection.  Neither way of ending is
// an error.
func (m *ClientMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	src := m.Input
	if src == nil {
		src = input.NewLineSource(os.Stdin)
		defer src.Close()
	}

	var (
		l     = loop.New(loop.WithLogger(m.Logger.Named("loop")))
		mb    = &mailbox.Mailbox{}
		pause = &mailbox.Flag{}
		stop  = &mailbox.Flag{}
		sink  = report.NewConsole(m.stdout())
	)

	c := client.New(l, m.Dialer, m.Options, sink, m.Logger.Named("client"), m.Metrics)
	ws := work.New(l, m.WorkPeriod, pause, stop, sink, m.Metrics)
	d := dispatch.New(l, mb, c, dispatch.Options{Interval: m.PollPeriod},
		sink, m.Logger.Named("dispatch"), m.Metrics)
	d.OnStop(ws.Stop)

	if m.Host != "" {
		mb.Set(fmt.Sprintf("c %s %s", m.Host, m.Port))
	}

	l.Post(func() {
		ws.Start()
		d.Start(ctx)
	})

	mon := &input.Monitor{
		Source:      src,
		Mailbox:     mb,
		Pause:       pause,
		Stop:        stop,
		SettleDelay: m.SettleDelay,
		Out:         m.stdout(),
		Sink:        sink,
		Logger:      m.Logger.Named("input"),
		DrainPoll:   m.PollPeriod,
		Done:        ctx.Done(),
	}
	monDone := mon.Start()

	err := l.Run(ctx)

	// The loop has returned, so this goroutine is the only one left
	// touching the client.
	c.Close()

	if err != nil {
		m.Logger.Verbose("interrupted: %v", err)
	} else {
		// A stop line ends the monitor before the loop drains.
		<-monDone
	}

	m.Logger.Info("event loop finished after %d jobs", ws.Completed())
	if m.Stats {
		fmt.Fprintln(m.stderr(), m.Metrics.JSON())
	}
	return nil
}
