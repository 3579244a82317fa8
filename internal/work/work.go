// Package work simulates a periodic background job on the event loop.
package work

import (
	"time"

	"nbclient/internal/loop"
	"nbclient/internal/mailbox"
	"nbclient/internal/metrics"
	"nbclient/internal/report"
)

// Scheduler runs one job per period until stopped.  While the pause
// flag is set each period passes without completing a job.
//
// Start, Stop and Completed must be called on the loop goroutine.  The
// flags may be set from anywhere.
type Scheduler struct {
	loop    *loop.Loop
	period  time.Duration
	pause   *mailbox.Flag
	stop    *mailbox.Flag
	sink    report.Sink
	metrics *metrics.Collector

	timer     *loop.Timer
	completed int
	stopped   bool // Stopping has been reported
}

// New creates a scheduler.  It does nothing until Start.
func New(l *loop.Loop, period time.Duration, pause, stop *mailbox.Flag,
	sink report.Sink, m *metrics.Collector) *Scheduler {
	if sink == nil {
		sink = report.Discard
	}
	return &Scheduler{
		loop:    l,
		period:  period,
		pause:   pause,
		stop:    stop,
		sink:    sink,
		metrics: m,
	}
}

// Start arms the first period.  Calling it again while armed is a no-op.
func (s *Scheduler) Start() {
	if s.timer != nil || s.stopped {
		return
	}
	s.arm()
}

// Stop sets the stop flag and disarms the pending period so the loop
// is free to exit.
func (s *Scheduler) Stop() {
	s.stop.Set()
	s.timer.Stop()
	s.timer = nil
	s.halt()
}

// Completed returns the number of jobs completed so far.
func (s *Scheduler) Completed() int { return s.completed }

func (s *Scheduler) arm() {
	s.timer = s.loop.AfterFunc(s.period, s.fire)
}

func (s *Scheduler) fire() {
	s.timer = nil

	switch {
	case s.stop.IsSet():
		s.halt()
		return
	case s.pause.IsSet():
	default:
		s.completed++
		s.metrics.JobCompleted()
		s.sink.Report(report.Event{Kind: report.JobCompleted, Job: s.completed})
	}
	s.arm()
}

func (s *Scheduler) halt() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.sink.Report(report.Event{Kind: report.Stopping})
}
