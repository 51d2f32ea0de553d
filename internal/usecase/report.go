package usecase

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

// Reporter summarises the backup directory. It never caches.
type Reporter struct {
	storage domain.Storage
	logger  Logger
}

func NewReporter(storage domain.Storage, logger Logger) *Reporter {
	return &Reporter{storage: storage, logger: logger}
}

func (uc *Reporter) Execute(ctx context.Context) (domain.CycleStats, error) {
	var stats domain.CycleStats
	log := loggerFrom(ctx, uc.logger)

	artifacts, err := uc.storage.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list artifacts: %w", err)
	}

	for _, artifact := range artifacts {
		if artifact.Quarantined {
			stats.Quarantined++
			continue
		}
		stats.Artifacts++
		stats.TotalBytes += artifact.Size
	}

	log.Infow("Backup directory statistics",
		"event", domain.EventCycleStats,
		"artifacts", stats.Artifacts,
		"total_bytes", stats.TotalBytes,
		"size", humanize.IBytes(uint64(stats.TotalBytes)),
		"quarantined", stats.Quarantined,
	)

	return stats, nil
}
