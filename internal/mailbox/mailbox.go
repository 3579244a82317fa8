// Package mailbox holds the only state shared between the input
// goroutine and the event loop: the pending operator command and the
// pause and stop flags.
//
// Each cell is guarded by its own mutex.  There are no condition
// variables; the loop side polls.
package mailbox

import "sync"

// Mailbox is a single-slot command hand-off.  A newer Set overwrites an
// unconsumed older command (last write wins, no queueing).
type Mailbox struct {
	mu  sync.Mutex
	cmd string
}

// Set stores cmd, replacing any command not yet taken.
func (m *Mailbox) Set(cmd string) {
	m.mu.Lock()
	m.cmd = cmd
	m.mu.Unlock()
}

// TakeAndClear returns the stored command and empties the slot, so each
// command is consumed at most once.  It returns "" when nothing is
// waiting.
func (m *Mailbox) TakeAndClear() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := m.cmd
	m.cmd = ""
	return cmd
}

// Empty reports whether no command is waiting.
func (m *Mailbox) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmd == ""
}

// Flag is a mutex-guarded boolean.
type Flag struct {
	mu  sync.Mutex
	set bool
}

// Set raises the flag.  It reports whether the flag was previously clear.
func (f *Flag) Set() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.set
	f.set = true
	return !was
}

// Clear lowers the flag.  It reports whether the flag was previously set.
func (f *Flag) Clear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.set
	f.set = false
	return was
}

// IsSet reports the current value.
func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}
