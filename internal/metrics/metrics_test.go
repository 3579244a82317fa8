package metrics

import (
	"encoding/json"
	"testing"
)

func TestCollector_Connections(t *testing.T) {
	c := New()

	c.ConnectionOpened()
	c.ConnectionOpened()
	if c.ActiveConnections() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveConnections())
	}
	if c.TotalConnections() != 2 {
		t.Errorf("total = %d, want 2", c.TotalConnections())
	}

	c.ConnectionClosed()
	if c.ActiveConnections() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveConnections())
	}
	if c.TotalConnections() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalConnections())
	}

	c.ConnectFailed()
	if got := c.Snapshot().ConnectFailures; got != 1 {
		t.Errorf("connect failures = %d, want 1", got)
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.ReadCompleted(1024)
	c.WriteCompleted(15)
	c.ReadCompleted(100)

	if c.TotalBytesIn() != 1124 {
		t.Errorf("bytes in = %d, want 1124", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 15 {
		t.Errorf("bytes out = %d, want 15", c.TotalBytesOut())
	}
	snap := c.Snapshot()
	if snap.ReadsCompleted != 2 || snap.WritesCompleted != 1 {
		t.Errorf("reads=%d writes=%d, want 2 and 1", snap.ReadsCompleted, snap.WritesCompleted)
	}
}

func TestCollector_JobsAndCommands(t *testing.T) {
	c := New()

	c.JobCompleted()
	c.JobCompleted()
	c.JobCompleted()
	c.CommandDispatched()

	if c.Jobs() != 3 {
		t.Errorf("jobs = %d, want 3", c.Jobs())
	}
	if c.Commands() != 1 {
		t.Errorf("commands = %d, want 1", c.Commands())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
	if snap := c.Snapshot(); snap.LastErrorMessage != "second error" {
		t.Errorf("last error = %q", snap.LastErrorMessage)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.ConnectionOpened()
	c.WriteCompleted(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.ConnectionsActive != 1 {
		t.Errorf("JSON active = %d", snap.ConnectionsActive)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.ConnectFailed()
	c.ReadCompleted(100)
	c.WriteCompleted(100)
	c.JobCompleted()
	c.CommandDispatched()
	c.RecordError("test")

	if c.ActiveConnections() != 0 || c.TotalBytesIn() != 0 || c.Jobs() != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.ConnectionsActive != 0 {
		t.Error("nil snapshot should be zero")
	}

	if j := c.JSON(); j == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
