// Package metrics provides lightweight, lock-free counters for tracking
// what a client session did: connections, bytes, completed reads and
// writes, simulated jobs and dispatched commands.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a client session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	connectionsActive  atomic.Int64
	connectionsTotal   atomic.Int64
	connectFailures    atomic.Int64
	bytesIn            atomic.Int64
	bytesOut           atomic.Int64
	readsCompleted     atomic.Int64
	writesCompleted    atomic.Int64
	jobsCompleted      atomic.Int64
	commandsDispatched atomic.Int64
	errorsTotal        atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ConnectFailed counts a failed resolution or dial.
func (c *Collector) ConnectFailed() {
	if c == nil {
		return
	}
	c.connectFailures.Add(1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// ReadCompleted records a finished read of n bytes.
func (c *Collector) ReadCompleted(n int) {
	if c == nil {
		return
	}
	c.readsCompleted.Add(1)
	c.bytesIn.Add(int64(n))
}

// WriteCompleted records a finished write of n bytes.
func (c *Collector) WriteCompleted(n int) {
	if c == nil {
		return
	}
	c.writesCompleted.Add(1)
	c.bytesOut.Add(int64(n))
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Work and command metrics ─────────────────────────────────────────

// JobCompleted counts a finished simulated work cycle.
func (c *Collector) JobCompleted() {
	if c == nil {
		return
	}
	c.jobsCompleted.Add(1)
}

// CommandDispatched counts a command taken from the mailbox.
func (c *Collector) CommandDispatched() {
	if c == nil {
		return
	}
	c.commandsDispatched.Add(1)
}

// Jobs returns the number of completed work cycles.
func (c *Collector) Jobs() int64 {
	if c == nil {
		return 0
	}
	return c.jobsCompleted.Load()
}

// Commands returns the number of dispatched commands.
func (c *Collector) Commands() int64 {
	if c == nil {
		return 0
	}
	return c.commandsDispatched.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string `json:"uptime"`
	ConnectionsActive  int64  `json:"connections_active"`
	ConnectionsTotal   int64  `json:"connections_total"`
	ConnectFailures    int64  `json:"connect_failures"`
	BytesIn            int64  `json:"bytes_in"`
	BytesOut           int64  `json:"bytes_out"`
	ReadsCompleted     int64  `json:"reads_completed"`
	WritesCompleted    int64  `json:"writes_completed"`
	JobsCompleted      int64  `json:"jobs_completed"`
	CommandsDispatched int64  `json:"commands_dispatched"`
	ErrorsTotal        int64  `json:"errors_total"`
	LastError          string `json:"last_error,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive:  c.connectionsActive.Load(),
		ConnectionsTotal:   c.connectionsTotal.Load(),
		ConnectFailures:    c.connectFailures.Load(),
		BytesIn:            c.bytesIn.Load(),
		BytesOut:           c.bytesOut.Load(),
		ReadsCompleted:     c.readsCompleted.Load(),
		WritesCompleted:    c.writesCompleted.Load(),
		JobsCompleted:      c.jobsCompleted.Load(),
		CommandsDispatched: c.commandsDispatched.Load(),
		ErrorsTotal:        c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
