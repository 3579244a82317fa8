package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	nberrors "nbclient/internal/errors"
)

// runWithin runs l and fails the test if it does not return in time.
func runWithin(t *testing.T, l *Loop, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	err := l.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("loop still had %d pending after %v", l.Pending(), d)
	}
	return err
}

func TestRun_NoWorkReturnsImmediately(t *testing.T) {
	l := New()
	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	l := New()
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, nberrors.ErrLoopRunning) {
		t.Fatalf("second Run = %v, want ErrLoopRunning", err)
	}
}

func TestAfterFunc_FiresThenDrains(t *testing.T) {
	l := New()
	fired := 0
	l.AfterFunc(10*time.Millisecond, func() { fired++ })

	if l.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", l.Pending())
	}
	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if l.Pending() != 0 {
		t.Errorf("pending = %d after drain", l.Pending())
	}
}

// A re-arming chain keeps the loop alive until it stops re-arming.
func TestAfterFunc_RearmChain(t *testing.T) {
	l := New()
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 5 {
			l.AfterFunc(time.Millisecond, tick)
		}
	}
	l.AfterFunc(time.Millisecond, tick)

	if err := runWithin(t, l, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestTimer_StopPreventsCallback(t *testing.T) {
	l := New()
	fired := false
	long := l.AfterFunc(time.Hour, func() { fired = true })
	l.AfterFunc(5*time.Millisecond, func() {
		if !long.Stop() {
			t.Error("Stop should report the timer as disarmed")
		}
		if long.Stop() {
			t.Error("second Stop should be a no-op")
		}
	})

	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Error("stopped timer fired")
	}
}

// Stopping a timer whose expiry is already queued must still suppress
// the callback and release exactly one work unit.
func TestTimer_StopAfterExpiryQueued(t *testing.T) {
	l := New()
	fired := false
	var short *Timer

	// Queued ahead of the expiry, so it runs first.
	l.Post(func() {
		if !short.Stop() {
			t.Error("Stop should win over a queued expiry")
		}
	})
	short = l.AfterFunc(0, func() { fired = true })

	// Let the zero-delay timer queue its expiry before the loop starts.
	time.Sleep(10 * time.Millisecond)

	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Error("stopped timer fired")
	}
	if l.Pending() != 0 {
		t.Errorf("pending = %d, want 0", l.Pending())
	}
}

func TestTimer_NilStop(t *testing.T) {
	var tm *Timer
	if tm.Stop() {
		t.Error("nil Stop should report false")
	}
}

func TestAsync_DeliversResultOnLoop(t *testing.T) {
	l := New()
	var got Result
	l.Async(func() Result {
		time.Sleep(5 * time.Millisecond)
		return Result{N: 15, Err: nil}
	}, func(r Result) { got = r })

	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatal(err)
	}
	if got.N != 15 || got.Err != nil {
		t.Errorf("got %+v", got)
	}
}

// Callbacks never overlap: an unsynchronised counter stays consistent
// (run with -race to make this meaningful).
func TestCallbacksAreSerialised(t *testing.T) {
	l := New()
	counter := 0
	const ops = 50
	for i := 0; i < ops; i++ {
		l.Async(func() Result { return Result{N: 1} }, func(r Result) {
			counter += r.N
		})
		l.AfterFunc(time.Millisecond, func() { counter++ })
	}
	if err := runWithin(t, l, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	if counter != 2*ops {
		t.Errorf("counter = %d, want %d", counter, 2*ops)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	l := New()
	l.AfterFunc(time.Hour, func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want deadline exceeded", err)
	}

	// Posting after Run returned must not block.
	done := make(chan struct{})
	go func() {
		l.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after Run returned")
	}
}

func TestPost_RunsWhileWorkPending(t *testing.T) {
	l := New()
	ran := make(chan struct{})
	tm := l.AfterFunc(time.Hour, func() {})
	go l.Post(func() {
		close(ran)
		tm.Stop()
	})

	if err := runWithin(t, l, time.Second); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
	default:
		t.Fatal("posted callback did not run")
	}
}
