// Package dispatch polls the command mailbox from the event loop and
// routes operator commands to the network client.
package dispatch

import (
	"context"
	"time"

	"nbclient/internal/errors"
	"nbclient/internal/loop"
	"nbclient/internal/mailbox"
	"nbclient/internal/metrics"
	"nbclient/internal/report"
	"nbclient/util"
)

// DefaultInterval is the mailbox polling period.
const DefaultInterval = 500 * time.Millisecond

// Network is the part of the client the dispatcher drives.
// *client.Client satisfies it.
type Network interface {
	Connect(ctx context.Context, host, port string) error
	Read(n int) error
	Write() error
}

// Options tune a Dispatcher.
type Options struct {
	Interval time.Duration // default DefaultInterval
}

// Dispatcher takes at most one command from the mailbox per interval.
// It keeps polling until it dispatches a stop command.
type Dispatcher struct {
	loop    *loop.Loop
	mailbox *mailbox.Mailbox
	net     Network
	opts    Options
	sink    report.Sink
	logger  *util.Logger
	metrics *metrics.Collector

	ctx     context.Context
	timer   *loop.Timer
	onStop  []func()
	stopped bool
}

// New creates a dispatcher.  It does nothing until Start.
func New(l *loop.Loop, mb *mailbox.Mailbox, net Network, opts Options,
	sink report.Sink, logger *util.Logger, m *metrics.Collector) *Dispatcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if sink == nil {
		sink = report.Discard
	}
	return &Dispatcher{
		loop:    l,
		mailbox: mb,
		net:     net,
		opts:    opts,
		sink:    sink,
		logger:  logger,
		metrics: m,
		ctx:     context.Background(),
	}
}

// OnStop registers fn to run on the loop when a stop command is
// dispatched.  Hooks run in registration order.
func (d *Dispatcher) OnStop(fn func()) {
	d.onStop = append(d.onStop, fn)
}

// Start arms the first poll.  ctx bounds the connects it issues.  It
// must be called on the loop goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.timer != nil || d.stopped {
		return
	}
	d.ctx = ctx
	d.arm()
}

// Stopped reports whether a stop command has been dispatched.
func (d *Dispatcher) Stopped() bool { return d.stopped }

func (d *Dispatcher) arm() {
	d.timer = d.loop.AfterFunc(d.opts.Interval, d.poll)
}

func (d *Dispatcher) poll() {
	d.timer = nil

	line := d.mailbox.TakeAndClear()
	if line == "" {
		d.arm()
		return
	}
	d.logger.Verbose("dispatching %q", line)

	cmd, err := Parse(line)
	if err != nil {
		d.metrics.RecordError(err.Error())
		d.sink.Report(report.Event{Kind: report.BadCommand, Text: line, Err: err})
		d.arm()
		return
	}
	d.metrics.CommandDispatched()

	if cmd.Verb == Stop {
		d.stop()
		return
	}
	d.execute(cmd)
	d.arm()
}

func (d *Dispatcher) execute(cmd Command) {
	var err error
	switch cmd.Verb {
	case Connect:
		// The client reports its own connect failures.
		if cerr := d.net.Connect(d.ctx, cmd.Host, cmd.Port); cerr != nil {
			d.logger.Debug("connect: %v", cerr)
		}
		return
	case Read:
		err = d.net.Read(cmd.Count)
	case Write:
		err = d.net.Write()
	}
	if err == nil {
		return
	}

	if errors.Is(err, errors.ErrNotConnected) {
		d.sink.Report(report.Event{Kind: report.NotConnected, Text: cmd.Verb.String(), Err: err})
		return
	}
	d.sink.Report(report.Event{
		Kind: report.BadCommand,
		Text: cmd.Line,
		Err:  errors.Command(cmd.Line, err),
	})
}

func (d *Dispatcher) stop() {
	d.stopped = true
	d.logger.Verbose("stop requested")
	for _, fn := range d.onStop {
		fn()
	}
}
