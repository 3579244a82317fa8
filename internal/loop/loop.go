// Package loop implements the reactor that owns every timer and socket
// completion of a client session.
//
// A Loop runs callbacks one at a time on the goroutine that called Run.
// Blocking work (socket reads and writes) happens on helper goroutines
// started by Async; only the completion handler comes back to the loop.
// Components driven by the loop therefore need no locking among
// themselves.
//
// Run returns once there is no outstanding work: every armed Timer and
// every in-flight Async operation counts as one unit, and the loop exits
// when the count drops to zero and no callback is queued.
package loop

import (
	"context"
	"sync/atomic"

	"nbclient/internal/errors"
	"nbclient/util"
)

// DefaultQueueSize is the capacity of the completion queue.
const DefaultQueueSize = 256

// Result is the outcome of an asynchronous operation.
type Result struct {
	N   int   // bytes transferred
	Err error // nil on success
}

// Loop is a single-goroutine event loop.
type Loop struct {
	tasks   chan func()
	quit    chan struct{} // closed when Run returns
	pending atomic.Int64
	started atomic.Bool

	logger *util.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger attaches a logger for debug tracing.
func WithLogger(logger *util.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates an idle loop.  Nothing runs until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:  make(chan func(), DefaultQueueSize),
		quit:   make(chan struct{}),
		logger: util.NewLogger(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes queued callbacks until no work remains or ctx is done.
// It returns nil when the loop drained, ctx.Err() when cancelled.  Run
// may be called only once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.ErrLoopRunning
	}
	defer close(l.quit)

	for {
		if l.pending.Load() == 0 && len(l.tasks) == 0 {
			l.logger.Debug("no outstanding work, exiting")
			return nil
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("cancelled with %d pending", l.pending.Load())
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn to run on the loop.  It may be called from any
// goroutine.  Posted callbacks are not counted as work: a loop with
// nothing else outstanding may exit before running them.  After Run has
// returned, Post drops fn.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// Pending returns the number of armed timers and in-flight operations.
func (l *Loop) Pending() int {
	return int(l.pending.Load())
}

// Async runs op on a helper goroutine and delivers its Result to done on
// the loop.  The operation counts as outstanding work until done has run.
func (l *Loop) Async(op func() Result, done func(Result)) {
	l.pending.Add(1)
	go func() {
		r := op()
		l.Post(func() {
			l.pending.Add(-1)
			done(r)
		})
	}()
}
