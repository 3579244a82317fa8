// Package input runs the operator input goroutine.  It is the only code
// outside the event loop, and it talks to the loop solely through the
// command mailbox and the pause and stop flags.
package input

import (
	"fmt"
	"io"
	"strings"
	"time"

	"nbclient/internal/mailbox"
	"nbclient/internal/report"
	"nbclient/util"
)

const (
	// DefaultSettleDelay is how long Start waits before reading input.
	DefaultSettleDelay = 3 * time.Second

	// DefaultDrainPoll is how often the monitor checks, at end of input,
	// whether the last command has been taken from the mailbox.
	DefaultDrainPoll = 50 * time.Millisecond
)

const banner = `
Keyboard monitor running

   To pause the work simulation type 'q'
   To connect to a server type 'c <host> <port>'
   To read from the server type 'r <byte count>'
   To send the predefined message type 'w'
   To stop type 'x'

   Finish every command with <ENTER>.

`

// Monitor forwards operator lines to the mailbox and drives the pause
// and stop flags.
type Monitor struct {
	Source      LineSource
	Mailbox     *mailbox.Mailbox
	Pause       *mailbox.Flag
	Stop        *mailbox.Flag
	SettleDelay time.Duration
	Out         io.Writer // usage banner; nil = no banner
	Sink        report.Sink
	Logger      *util.Logger

	// DrainPoll is the mailbox check interval at end of input.  Done,
	// when closed, abandons that wait.
	DrainPoll time.Duration
	Done      <-chan struct{}
}

// Start runs the monitor on its own goroutine after SettleDelay.  The
// returned channel is closed when it exits.
func (m *Monitor) Start() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if m.SettleDelay > 0 {
			time.Sleep(m.SettleDelay)
		}
		m.Run()
	}()
	return done
}

// Run prints the banner and handles lines until a stop line or the end
// of input.  End of input counts as a stop once the last command has
// been taken from the mailbox.
func (m *Monitor) Run() {
	if m.Out != nil {
		fmt.Fprint(m.Out, banner)
	}

	for {
		line, err := m.Source.ReadLine()
		if err != nil {
			if err != io.EOF {
				m.Logger.Warn("input: %v", err)
			}
			m.Logger.Verbose("end of input, stopping")
			if m.drain() {
				m.stop("x")
			}
			return
		}
		m.report(report.Event{Kind: report.InputEcho, Text: line})

		if !m.handle(line) {
			return
		}
	}
}

// handle acts on one line and reports whether to keep reading.
func (m *Monitor) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}

	switch trimmed[0] {
	case 'x', 'X':
		m.stop(trimmed)
		return false

	case 'q', 'Q':
		m.Pause.Set()
		m.report(report.Event{Kind: report.Paused})

	case 'c', 'C', 'r', 'R', 'w', 'W':
		m.Mailbox.Set(trimmed)
		if m.Pause.Clear() {
			m.report(report.Event{Kind: report.Resumed})
		}

	default:
		m.Logger.Verbose("ignoring input %q", trimmed)
	}
	return true
}

// drain waits until the mailbox is empty.  It returns false if Done
// closed first.
func (m *Monitor) drain() bool {
	if m.Mailbox.Empty() {
		return true
	}
	every := m.DrainPoll
	if every <= 0 {
		every = DefaultDrainPoll
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-m.Done:
			return false
		case <-tick.C:
			if m.Mailbox.Empty() {
				return true
			}
		}
	}
}

func (m *Monitor) stop(line string) {
	m.Mailbox.Set(line)
	m.Stop.Set()
}

func (m *Monitor) report(ev report.Event) {
	if m.Sink != nil {
		m.Sink.Report(ev)
	}
}
