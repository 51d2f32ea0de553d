package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/robfig/cron/v3"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

type State int32

const (
	StateWaitingForDB State = iota
	StateRunningCycle
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateWaitingForDB:
		return "waiting-for-db"
	case StateRunningCycle:
		return "running-cycle"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Gate blocks until the scheduler may start its first cycle.
type Gate interface {
	Wait(ctx context.Context) error
}

type Job func(ctx context.Context) error

type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

type Option func(*Scheduler)

// WithMaxCycles makes Run return after n cycles. Zero means no limit.
func WithMaxCycles(n int) Option {
	return func(s *Scheduler) {
		s.maxCycles = n
	}
}

// Scheduler runs one job at a time. The next fire time is computed from the
// moment the previous cycle finished, so cycles never overlap.
type Scheduler struct {
	clock     clock.Clock
	schedule  cron.Schedule
	logger    Logger
	maxCycles int
	state     atomic.Int32
	cycles    atomic.Int64
}

func New(clk clock.Clock, schedule cron.Schedule, logger Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clk,
		schedule: schedule,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(StateWaitingForDB))
	return s
}

// Run waits on the gate once and then runs job on schedule until ctx is
// cancelled. Cancellation never interrupts a running job: the job receives a
// context that is detached from ctx, and ctx is only observed between cycles.
func (s *Scheduler) Run(ctx context.Context, gate Gate, job Job) error {
	defer s.setState(StateStopped)

	s.setState(StateWaitingForDB)
	if err := gate.Wait(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		s.logger.Infow("Shutdown requested before first cycle", "event", domain.EventShutdown)
		return nil
	}

	jobCtx := context.WithoutCancel(ctx)
	for {
		s.setState(StateRunningCycle)
		n := s.cycles.Add(1)
		if err := job(jobCtx); err != nil {
			s.logger.Warnw("Backup cycle finished with errors",
				"event", domain.EventCycleFinished,
				"cycle", n,
				"error", err,
			)
		}

		if s.maxCycles > 0 && n >= int64(s.maxCycles) {
			return nil
		}

		now := s.clock.Now()
		next := s.next(now)
		if next.IsZero() {
			return fmt.Errorf("schedule has no activation after %s", now.Format(time.RFC3339))
		}
		wait := next.Sub(now)
		if wait < 0 {
			wait = 0
		}

		s.setState(StateSleeping)
		s.logger.Infow("Next backup scheduled",
			"event", domain.EventNextRun,
			"next_run", next,
			"wait", wait.Round(time.Second),
		)

		select {
		case <-ctx.Done():
			s.logger.Infow("Scheduler stopped", "event", domain.EventShutdown, "cycles", n)
			return nil
		case <-s.clock.After(wait):
		}
	}
}

// next returns the next fire time after now. cron.Every rounds down to the
// second; a fixed interval is measured from now exactly so a cycle never
// starts sooner than the interval.
func (s *Scheduler) next(now time.Time) time.Time {
	if every, ok := s.schedule.(cron.ConstantDelaySchedule); ok {
		return now.Add(every.Delay)
	}
	return s.schedule.Next(now)
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Cycles is the number of cycles started so far.
func (s *Scheduler) Cycles() int {
	return int(s.cycles.Load())
}

func (s *Scheduler) setState(state State) {
	s.state.Store(int32(state))
}
