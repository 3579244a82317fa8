// Package client implements the non-blocking TCP client driven by the
// event loop.
//
// Every exported method must be called on the loop goroutine.  Connect
// blocks that goroutine for the duration of the dial, bounded by
// DialTimeout.  Reads and writes run on helper goroutines and complete
// back on the loop.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"nbclient/config"
	"nbclient/internal/errors"
	"nbclient/internal/loop"
	"nbclient/internal/metrics"
	"nbclient/internal/report"
	"nbclient/internal/transport"
	"nbclient/util"
)

// Options are the fixed inputs of a client.
type Options struct {
	MaxPacketSize  int           // receive buffer capacity; default config.DefaultMaxPacketSize
	ConnectMessage []byte        // sent automatically after each successful connect
	WriteMessage   []byte        // sent on each Write
	DialTimeout    time.Duration // 0 = no limit beyond ctx
}

// Client owns at most one TCP connection and its receive buffer.
type Client struct {
	loop    *loop.Loop
	dialer  transport.Dialer
	opts    Options
	sink    report.Sink
	logger  *util.Logger
	metrics *metrics.Collector

	state  State
	conn   net.Conn
	addr   string
	connID string

	// gen identifies the current connection.  Completions capture it
	// when issued and are discarded if it has moved on.
	gen uint64

	// buf is reused across reads; only one read may be in flight.
	buf     []byte
	reading bool
}

// New creates a disconnected client.  A nil sink discards reports; a nil
// metrics collector is a valid no-op.
func New(l *loop.Loop, d transport.Dialer, opts Options, sink report.Sink,
	logger *util.Logger, m *metrics.Collector) *Client {
	if opts.MaxPacketSize <= 0 {
		opts.MaxPacketSize = config.DefaultMaxPacketSize
	}
	if sink == nil {
		sink = report.Discard
	}
	return &Client{
		loop:    l,
		dialer:  d,
		opts:    opts,
		sink:    sink,
		logger:  logger,
		metrics: m,
		buf:     make([]byte, opts.MaxPacketSize),
	}
}

// State returns the connection state.
func (c *Client) State() State { return c.state }

// ConnID returns the identifier of the current connection, or "".
func (c *Client) ConnID() string { return c.connID }

// Connect resolves host:port and connects to it, replacing any current
// connection.  On success the connect-announcement is sent
// asynchronously.  A failure is reported and returned; the client is
// left Disconnected.
func (c *Client) Connect(ctx context.Context, host, port string) error {
	addr := util.JoinAddr(host, port)

	if c.state != Disconnected {
		c.logger.Verbose("replacing connection %s to %s", c.connID, c.addr)
		c.closeConn(nil)
	}

	c.state = Connecting
	c.logger.Verbose("connecting to %s", addr)

	if c.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.DialTimeout)
		defer cancel()
	}

	conn, err := c.dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		c.state = Disconnected
		op := "dial"
		if errors.IsResolveError(err) {
			op = "resolve"
		}
		nerr := errors.Wrap(op, addr, err)
		c.metrics.ConnectFailed()
		c.metrics.RecordError(nerr.Error())
		c.sink.Report(report.Event{Kind: report.ConnectFailed, Addr: addr, Err: nerr})
		return nerr
	}

	c.gen++
	c.conn = conn
	c.addr = addr
	c.connID = uuid.NewString()
	c.state = Connected
	c.metrics.ConnectionOpened()
	c.logger.Verbose("connected to %s as %s", conn.RemoteAddr(), c.connID)
	c.sink.Report(report.Event{Kind: report.Connected, ConnID: c.connID, Addr: addr})

	c.send("announce", c.opts.ConnectMessage, report.AnnounceSent)
	return nil
}

// Read issues a read of exactly n bytes.  It fails without side effects
// when not connected, when n is outside 1..MaxPacketSize, or while another
// read is still in flight.  The bytes are reported as a Received event
// whose Data is valid only during the report.
func (c *Client) Read(n int) error {
	if c.state != Connected {
		return errors.ErrNotConnected
	}
	if n < 1 || n > len(c.buf) {
		return fmt.Errorf("%w: %d (want 1..%d)", errors.ErrInvalidCount, n, len(c.buf))
	}
	if c.reading {
		return errors.ErrReadPending
	}

	c.reading = true
	conn, gen, dst := c.conn, c.gen, c.buf[:n]
	c.sink.Report(report.Event{Kind: report.ReadPending, ConnID: c.connID, Addr: c.addr, N: n})

	c.loop.Async(func() loop.Result {
		got, err := io.ReadFull(conn, dst)
		return loop.Result{N: got, Err: err}
	}, func(r loop.Result) {
		c.reading = false
		if !c.current(gen) {
			c.logger.Debug("discarding read completion from a closed connection")
			return
		}
		// A peer that closes mid-read still delivers what it sent.
		if r.N > 0 {
			c.metrics.ReadCompleted(r.N)
			c.sink.Report(report.Event{
				Kind:   report.Received,
				ConnID: c.connID,
				Addr:   c.addr,
				N:      r.N,
				Data:   dst[:r.N],
			})
		}
		if r.Err != nil {
			c.fail("read", r.Err)
		}
	})
	return nil
}

// Write sends the configured write message.  It fails without side
// effects when not connected.
func (c *Client) Write() error {
	if c.state != Connected {
		return errors.ErrNotConnected
	}
	c.send("write", c.opts.WriteMessage, report.WriteSent)
	return nil
}

// Close closes the current connection, if any.
func (c *Client) Close() {
	if c.state == Disconnected {
		return
	}
	c.logger.Verbose("closing connection %s", c.connID)
	c.closeConn(nil)
}

// send writes msg asynchronously and reports done once every byte went
// out.  Anything less closes the connection.
func (c *Client) send(op string, msg []byte, done report.Kind) {
	conn, gen := c.conn, c.gen

	c.loop.Async(func() loop.Result {
		n, err := conn.Write(msg)
		return loop.Result{N: n, Err: err}
	}, func(r loop.Result) {
		if !c.current(gen) {
			c.logger.Debug("discarding %s completion from a closed connection", op)
			return
		}
		if r.Err == nil && r.N != len(msg) {
			r.Err = fmt.Errorf("%w: %d of %d bytes", errors.ErrShortWrite, r.N, len(msg))
		}
		if r.Err != nil {
			c.fail(op, r.Err)
			return
		}
		c.metrics.WriteCompleted(r.N)
		c.sink.Report(report.Event{Kind: done, ConnID: c.connID, Addr: c.addr, N: r.N})
	})
}

// current reports whether a completion issued for connection gen should
// still act.
func (c *Client) current(gen uint64) bool {
	return c.state == Connected && c.gen == gen
}

// fail tears down the connection after an I/O error.
func (c *Client) fail(op string, err error) {
	nerr := errors.WrapConn(op, c.addr, c.connID, err)
	if !errors.IsPeerClosed(err) {
		c.metrics.RecordError(nerr.Error())
	}
	c.logger.Verbose("%v", nerr)
	c.closeConn(nerr)
}

func (c *Client) closeConn(cause error) {
	if c.conn == nil {
		c.state = Disconnected
		return
	}
	c.conn.Close() //nolint:errcheck

	ev := report.Event{Kind: report.ConnectionClosed, ConnID: c.connID, Addr: c.addr, Err: cause}
	c.conn = nil
	c.connID = ""
	c.state = Disconnected
	c.metrics.ConnectionClosed()
	c.sink.Report(ev)
}
