package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

// RetryPolicy controls how the readiness gate probes the database.
type RetryPolicy struct {
	// Attempts is the maximum number of probes; retry.UnlimitedAttempts
	// never gives up.
	Attempts int
	Delay    time.Duration
}

// UnlimitedRetry probes forever with a constant delay.
func UnlimitedRetry(delay time.Duration) RetryPolicy {
	return RetryPolicy{Attempts: retry.UnlimitedAttempts, Delay: delay}
}

// ReadinessGate blocks until the database accepts connections.
type ReadinessGate struct {
	db           domain.Database
	policy       RetryPolicy
	probeTimeout time.Duration
	clock        clock.Clock
	logger       Logger
	attempts     atomic.Int64
}

func NewReadinessGate(
	db domain.Database,
	policy RetryPolicy,
	probeTimeout time.Duration,
	clk clock.Clock,
	logger Logger,
) *ReadinessGate {
	return &ReadinessGate{
		db:           db,
		policy:       policy,
		probeTimeout: probeTimeout,
		clock:        clk,
		logger:       logger,
	}
}

// Wait returns nil on the first successful probe. Every probe error is
// retried the same way. It only fails when ctx is cancelled or a bounded
// policy runs out of attempts.
func (g *ReadinessGate) Wait(ctx context.Context) error {
	dbName := g.db.GetName()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			g.attempts.Add(1)
			return g.probe(ctx)
		},
		NotifyFunc: func(err error, attempt int) {
			g.logger.Warnw("Database not ready, retrying",
				"event", domain.EventWaiting,
				"database", dbName,
				"attempt", attempt,
				"retry_in", g.policy.Delay,
				"error", err,
			)
		},
		Attempts: g.policy.Attempts,
		Delay:    g.policy.Delay,
		Clock:    g.clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		return fmt.Errorf("%w: %s after %d attempt(s): %w",
			domain.ErrDatabaseUnreachable, dbName, g.Attempts(), retry.LastError(err))
	}

	g.logger.Infow("Database is accepting connections",
		"event", domain.EventConnected,
		"database", dbName,
		"attempts", g.Attempts(),
	)
	return nil
}

// Attempts is the number of probes made so far.
func (g *ReadinessGate) Attempts() int {
	return int(g.attempts.Load())
}

func (g *ReadinessGate) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()
	return g.db.Ping(probeCtx)
}
