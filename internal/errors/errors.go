// Package errors provides domain-specific error types for nbclient.
//
// These types carry structured context (operation, address, connection,
// offending command line) so the report channel can say which kind of
// failure happened without string matching.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected    = errors.New("no connection")
	ErrInvalidCount    = errors.New("invalid byte count")
	ErrReadPending     = errors.New("a read is already in progress")
	ErrShortWrite      = errors.New("short write")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrMissingArgument = errors.New("missing argument")
	ErrExtraArgument   = errors.New("unexpected argument")
	ErrLoopRunning     = errors.New("event loop is already running")
	ErrPayloadTooLarge = errors.New("payload exceeds maximum packet size")
	ErrEmptyPayload    = errors.New("payload is empty")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op     string // operation: "resolve", "dial", "read", "write"
	Addr   string // network address involved
	ConnID string // connection identifier, empty before a connection exists
	Err    error  // underlying error
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.ConnID != "" {
		s = fmt.Sprintf("[%s] %s", e.ConnID, s)
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// CommandError represents an operator command that could not be parsed.
type CommandError struct {
	Line string // the raw command line
	Err  error  // ErrUnknownCommand, ErrMissingArgument, ErrInvalidCount …
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Line, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// WrapConn creates a NetworkError tagged with a connection ID.
func WrapConn(op, addr, connID string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, ConnID: connID, Err: err}
}

// Command creates a CommandError for line.
func Command(line string, err error) *CommandError {
	return &CommandError{Line: line, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsPeerClosed reports whether err means the remote side (or our own
// Close) ended the connection, as opposed to a transport failure.
func IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// IsResolveError reports whether err came from name resolution rather
// than from the connection attempt itself.
func IsResolveError(err error) bool {
	var dnsErr *net.DNSError
	var addrErr *net.AddrError
	return errors.As(err, &dnsErr) || errors.As(err, &addrErr)
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use nbclient/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }
