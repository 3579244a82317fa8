package errors

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "without connection",
			err:  NetworkError{Op: "dial", Addr: "127.0.0.1:9999", Err: fmt.Errorf("connection refused")},
			want: "dial 127.0.0.1:9999: connection refused",
		},
		{
			name: "with connection",
			err:  NetworkError{Op: "read", Addr: "127.0.0.1:5555", ConnID: "c1", Err: io.EOF},
			want: "[c1] read 127.0.0.1:5555: EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := WrapConn("read", "x", "c1", io.EOF)
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestCommandError(t *testing.T) {
	err := Command("r abc", ErrInvalidCount)
	want := `command "r abc": invalid byte count`
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidCount) {
		t.Error("should unwrap to ErrInvalidCount")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "max-packet",
				Value:   0,
				Message: "must be at least 1",
				Hint:    "the default is 1024",
			},
			want: "config: --max-packet=0: must be at least 1\n  hint: the default is 1024",
		},
		{
			name: "missing value",
			err: ConfigError{
				Field:   "port",
				Message: "required with -l",
			},
			want: "config: --port: required with -l",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsPeerClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"wrapped eof", WrapConn("read", "x", "c1", io.EOF), true},
		{"closed", &net.OpError{Op: "read", Net: "tcp", Err: net.ErrClosed}, true},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPeerClosed(tt.err); got != tt.want {
				t.Errorf("IsPeerClosed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsResolveError(t *testing.T) {
	dns := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Name: "nope.invalid", Err: "no such host"}}
	if !IsResolveError(dns) {
		t.Error("DNS error should be a resolve error")
	}
	if IsResolveError(fmt.Errorf("connection refused")) {
		t.Error("plain error should not be a resolve error")
	}
}

func TestSentinels(t *testing.T) {
	// Verify sentinel errors are distinct.
	sentinels := []error{
		ErrNotConnected, ErrInvalidCount, ErrReadPending, ErrShortWrite,
		ErrUnknownCommand, ErrMissingArgument, ErrLoopRunning,
		ErrPayloadTooLarge, ErrEmptyPayload,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
