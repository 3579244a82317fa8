// Package report is the observable channel through which the client
// tells the operator what happened.  Components emit typed events; how
// they are shown is up to the Sink.
package report

import (
	"fmt"
	"io"
	"sync"

	"nbclient/util"
)

// Kind classifies an event.
type Kind int

const (
	// Failures (never fatal).
	ConnectFailed    Kind = iota // resolution or connection attempt failed
	ConnectionClosed             // I/O error, peer close, or explicit close
	BadCommand                   // malformed or unrecognized command
	NotConnected                 // operation attempted without a connection

	// Progress.
	Connected    // connection established
	AnnounceSent // connect-announcement fully written
	WriteSent    // operator write fully written
	ReadPending  // read issued, waiting for the peer
	Received     // read completed
	JobCompleted // simulated work cycle finished
	Paused       // work suspended for operator input
	Resumed      // work resumed
	Stopping     // stop requested
	InputEcho    // raw input line, echoed back
)

var kindNames = [...]string{
	ConnectFailed:    "connect-failed",
	ConnectionClosed: "connection-closed",
	BadCommand:       "bad-command",
	NotConnected:     "not-connected",
	Connected:        "connected",
	AnnounceSent:     "announce-sent",
	WriteSent:        "write-sent",
	ReadPending:      "read-pending",
	Received:         "received",
	JobCompleted:     "job-completed",
	Paused:           "paused",
	Resumed:          "resumed",
	Stopping:         "stopping",
	InputEcho:        "input",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsFailure reports whether k is one of the error kinds.
func (k Kind) IsFailure() bool {
	return k <= NotConnected
}

// Event is a single report.  Data aliases the receive buffer and is only
// valid during the Report call.
type Event struct {
	Kind   Kind
	ConnID string
	Addr   string
	N      int    // bytes transferred or requested
	Data   []byte // Received only
	Job    int    // JobCompleted only
	Text   string // command line or free text
	Err    error
}

// Sink consumes events.  Report is called from the loop goroutine and
// from the input goroutine, so implementations must be safe for
// concurrent use.
type Sink interface {
	Report(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Report calls f(ev).
func (f SinkFunc) Report(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// ── Console ──────────────────────────────────────────────────────────

// Console writes one human-readable line per event.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Report implements Sink.
func (c *Console) Report(ev Event) {
	line := Format(ev)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Format renders ev as a single operator-facing line.
func Format(ev Event) string {
	switch ev.Kind {
	case ConnectFailed:
		return fmt.Sprintf("Client connection to %s failed: %v", ev.Addr, ev.Err)
	case ConnectionClosed:
		if ev.Err != nil {
			return fmt.Sprintf("Connection closed: %v", ev.Err)
		}
		return "Connection closed"
	case BadCommand:
		return fmt.Sprintf("Bad command: %v", ev.Err)
	case NotConnected:
		return fmt.Sprintf("%s request but no connection", ev.Text)
	case Connected:
		return fmt.Sprintf("Client connected OK to %s (%s)", ev.Addr, ev.ConnID)
	case AnnounceSent:
		return "Connection message sent to server"
	case WriteSent:
		return "Write message sent to server"
	case ReadPending:
		return fmt.Sprintf("Waiting for server to reply (%d bytes)", ev.N)
	case Received:
		return fmt.Sprintf("%d bytes read\n%s", ev.N, util.HexBytes(ev.Data))
	case JobCompleted:
		return fmt.Sprintf("Completed job %d", ev.Job)
	case Paused:
		return "Waiting for user input: C or R or W"
	case Resumed:
		return "Resuming work"
	case Stopping:
		return "Stopping"
	case InputEcho:
		return "input was " + ev.Text
	}
	return ev.Kind.String()
}
