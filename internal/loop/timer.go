package loop

import "time"

// Timer is a one-shot timer whose callback runs on the loop.  Re-arming
// means creating a new Timer; a component holds at most one at a time.
type Timer struct {
	l *Loop
	t *time.Timer

	// done is set once the timer fired or was stopped.  Only the loop
	// goroutine touches it.
	done bool
}

// AfterFunc arms a timer that calls fn on the loop after d.  The timer
// counts as outstanding work until it fires or is stopped.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.pending.Add(1)
	tm := &Timer{l: l}
	tm.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if tm.done {
				return // stopped after expiry but before we ran
			}
			tm.done = true
			l.pending.Add(-1)
			fn()
		})
	})
	return tm
}

// Stop disarms the timer and releases its work unit.  It must be called
// on the loop goroutine.  It reports whether the callback was prevented
// from running; a nil Timer is safe to stop.
func (tm *Timer) Stop() bool {
	if tm == nil || tm.done {
		return false
	}
	tm.done = true
	tm.t.Stop()
	tm.l.pending.Add(-1)
	return true
}
