package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

const defaultAlertTimeout = 30 * time.Second

// Cycle runs backup, verify, retention and report, strictly in that order.
// A failing stage is logged and the remaining stages still run.
type Cycle struct {
	backup   *Backup
	verifier *Verifier
	cleanup  *Cleanup
	reporter *Reporter
	notifier domain.Notifier
	clock    clock.Clock
	logger   Logger

	alertTimeout time.Duration
}

func NewCycle(
	backup *Backup,
	verifier *Verifier,
	cleanup *Cleanup,
	reporter *Reporter,
	notifier domain.Notifier,
	clk clock.Clock,
	logger Logger,
) *Cycle {
	return &Cycle{
		backup:   backup,
		verifier: verifier,
		cleanup:  cleanup,
		reporter: reporter,
		notifier: notifier,
		clock:    clk,
		logger:   logger,

		alertTimeout: defaultAlertTimeout,
	}
}

func (c *Cycle) Run(ctx context.Context) error {
	ctx, log := withFields(ctx, c.logger, "cycle_id", uuid.NewString())
	start := c.clock.Now()
	log.Infow("Backup cycle started", "event", domain.EventCycleStarted)

	var errs []error

	artifact, err := c.backup.Execute(ctx)
	if err != nil {
		errs = append(errs, err)
		c.alert(ctx, fmt.Sprintf("❌ Backup failed\n\n%v", err))
	} else if err := c.verifier.Execute(ctx, artifact); err != nil {
		errs = append(errs, err)
		c.alert(ctx, fmt.Sprintf("⚠️ Backup integrity check failed\n\n📁 File: %s\n%v", artifact.Filename, err))
	}

	if _, err := c.cleanup.Execute(ctx); err != nil {
		errs = append(errs, err)
		log.Errorw("Retention sweep incomplete",
			"event", domain.EventRetentionFailed,
			"error", err,
		)
	}

	if _, err := c.reporter.Execute(ctx); err != nil {
		errs = append(errs, err)
		log.Errorw("Failed to compute directory statistics",
			"event", domain.EventCycleStats,
			"error", err,
		)
	}

	err = errors.Join(errs...)
	log.Infow("Backup cycle finished",
		"event", domain.EventCycleFinished,
		"duration", c.clock.Now().Sub(start).Round(time.Millisecond),
		"ok", err == nil,
	)
	return err
}

// alert is bounded by its own timeout; the cycle context has no deadline.
func (c *Cycle) alert(ctx context.Context, message string) {
	ctx, cancel := context.WithTimeout(ctx, c.alertTimeout)
	defer cancel()

	if err := c.notifier.Notify(ctx, message); err != nil {
		loggerFrom(ctx, c.logger).Warnw("Failed to send alert", "event", domain.EventNotifyFailed, "error", err)
	}
}
