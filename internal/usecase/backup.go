package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/clock"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

// Backup produces one artifact per call, or nothing.
type Backup struct {
	db         domain.Database
	storage    domain.Storage
	compressor domain.Compressor
	clock      clock.Clock
	logger     Logger
	timeout    time.Duration
}

func NewBackup(
	db domain.Database,
	storage domain.Storage,
	compressor domain.Compressor,
	clk clock.Clock,
	logger Logger,
	timeout time.Duration,
) *Backup {
	return &Backup{
		db:         db,
		storage:    storage,
		compressor: compressor,
		clock:      clk,
		logger:     logger,
		timeout:    timeout,
	}
}

func (uc *Backup) Execute(ctx context.Context) (domain.Artifact, error) {
	log := loggerFrom(ctx, uc.logger)
	start := uc.clock.Now()
	dbName := uc.db.GetName()
	filename := domain.ArtifactName(dbName, start)

	log.Infow("Starting backup",
		"event", domain.EventBackupStarted,
		"database", dbName,
		"type", uc.db.GetType(),
		"file", filename,
	)

	artifact, err := uc.run(ctx, filename)
	if err != nil {
		log.Errorw("Backup failed",
			"event", domain.EventBackupFailed,
			"database", dbName,
			"file", filename,
			"error", err,
		)
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrBackupExecutionFailed, err)
	}

	log.Infow("Backup completed",
		"event", domain.EventBackupCompleted,
		"database", dbName,
		"file", artifact.Filename,
		"size_bytes", artifact.Size,
		"size", humanize.IBytes(uint64(artifact.Size)),
		"duration", uc.clock.Now().Sub(start).Round(time.Millisecond),
	)

	return artifact, nil
}

// run streams dump -> gzip -> pending file. The file only gets its final
// name when every stage succeeded.
func (uc *Backup) run(ctx context.Context, filename string) (domain.Artifact, error) {
	pending, err := uc.storage.Create(filename)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("create artifact: %w", err)
	}
	defer pending.Abort()

	dumpCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	zw, err := uc.compressor.NewWriter(pending)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("compression: %w", err)
	}

	if err := uc.db.Dump(dumpCtx, zw); err != nil {
		_ = zw.Close()
		return domain.Artifact{}, fmt.Errorf("dump: %w", err)
	}

	if err := zw.Close(); err != nil {
		return domain.Artifact{}, fmt.Errorf("compression: %w", err)
	}

	artifact, err := pending.Commit()
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("commit artifact: %w", err)
	}

	return artifact, nil
}
