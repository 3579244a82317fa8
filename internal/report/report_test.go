package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"nbclient/internal/errors"
)

func TestKind_String(t *testing.T) {
	if got := Received.String(); got != "received" {
		t.Errorf("got %q", got)
	}
	if got := Kind(99).String(); got != "kind(99)" {
		t.Errorf("got %q", got)
	}
}

func TestKind_IsFailure(t *testing.T) {
	for _, k := range []Kind{ConnectFailed, ConnectionClosed, BadCommand, NotConnected} {
		if !k.IsFailure() {
			t.Errorf("%v should be a failure", k)
		}
	}
	for _, k := range []Kind{Connected, Received, JobCompleted, Stopping} {
		if k.IsFailure() {
			t.Errorf("%v should not be a failure", k)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"received", Event{Kind: Received, N: 3, Data: []byte{0x02, 0xfd, 0x00}}, "3 bytes read\n02 fd 00"},
		{"job", Event{Kind: JobCompleted, Job: 7}, "Completed job 7"},
		{"not connected", Event{Kind: NotConnected, Text: "Read"}, "Read request but no connection"},
		{"closed", Event{Kind: ConnectionClosed}, "Connection closed"},
		{"bad command", Event{Kind: BadCommand, Err: errors.Command("z", errors.ErrUnknownCommand)},
			`Bad command: command "z": unrecognized command`},
		{"echo", Event{Kind: InputEcho, Text: "w"}, "input was w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.ev); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Report(Event{Kind: Connected, Addr: "127.0.0.1:5555", ConnID: "abc"})
	c.Report(Event{Kind: ConnectFailed, Addr: "127.0.0.1:9999", Err: fmt.Errorf("refused")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[1], "refused") {
		t.Errorf("line %q should carry the error", lines[1])
	}
}

func TestRecorder_CopiesData(t *testing.T) {
	r := NewRecorder()
	buf := []byte{1, 2, 3}
	r.Report(Event{Kind: Received, N: 3, Data: buf})
	buf[0] = 9 // the receive buffer is reused after the callback

	ev, ok := r.Last(Received)
	if !ok {
		t.Fatal("no Received event")
	}
	if ev.Data[0] != 1 {
		t.Errorf("recorded data aliased the buffer: %v", ev.Data)
	}
}

func TestRecorder_WaitFor(t *testing.T) {
	r := NewRecorder()
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Report(Event{Kind: Stopping})
	}()
	if _, ok := r.WaitFor(Stopping, time.Second); !ok {
		t.Fatal("WaitFor timed out")
	}
	if _, ok := r.WaitFor(Connected, 10*time.Millisecond); ok {
		t.Fatal("WaitFor found an event that was never reported")
	}
	if r.Count(Stopping) != 1 {
		t.Errorf("count = %d, want 1", r.Count(Stopping))
	}
}
