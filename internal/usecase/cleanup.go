package usecase

import (
	"context"
	"fmt"

	"github.com/juju/clock"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

type RetentionResult struct {
	Deleted int
	Failed  int
}

// Cleanup deletes artifacts older than the retention policy allows.
type Cleanup struct {
	storage domain.Storage
	policy  domain.RetentionPolicy
	clock   clock.Clock
	logger  Logger
}

func NewCleanup(
	storage domain.Storage,
	policy domain.RetentionPolicy,
	clk clock.Clock,
	logger Logger,
) *Cleanup {
	return &Cleanup{
		storage: storage,
		policy:  policy,
		clock:   clk,
		logger:  logger,
	}
}

// Execute sweeps the directory once. A failed delete does not stop the sweep;
// failures are counted and reported through the returned error.
func (uc *Cleanup) Execute(ctx context.Context) (RetentionResult, error) {
	var result RetentionResult
	log := loggerFrom(ctx, uc.logger)

	artifacts, err := uc.storage.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list artifacts: %w", err)
	}

	now := uc.clock.Now()
	cutoff := uc.policy.Cutoff(now)

	for _, artifact := range artifacts {
		if !uc.policy.Expired(artifact, now) {
			continue
		}

		if err := uc.storage.Delete(ctx, artifact.Filename); err != nil {
			result.Failed++
			log.Errorw("Failed to delete expired backup",
				"event", domain.EventRetentionFailed,
				"file", artifact.Filename,
				"error", err,
			)
			continue
		}

		result.Deleted++
		log.Infow("Deleted expired backup",
			"event", domain.EventRetentionDeleted,
			"file", artifact.Filename,
			"created_at", artifact.CreatedAt,
			"modified_at", artifact.ModTime,
		)
	}

	log.Infow("Retention sweep completed",
		"event", domain.EventRetentionCompleted,
		"retention_days", uc.policy.MaxAgeDays,
		"age_source", string(uc.policy.AgeSource),
		"cutoff", cutoff,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)

	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d file(s)", domain.ErrRetentionDeletionFailed, result.Failed)
	}
	return result, nil
}
