package usecase

import (
	"context"
	"fmt"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

// Verifier checks that an artifact is a complete gzip stream.
type Verifier struct {
	storage    domain.Storage
	compressor domain.Compressor
	logger     Logger
	quarantine bool
}

func NewVerifier(storage domain.Storage, compressor domain.Compressor, logger Logger, quarantine bool) *Verifier {
	return &Verifier{
		storage:    storage,
		compressor: compressor,
		logger:     logger,
		quarantine: quarantine,
	}
}

// Execute returns nil for a valid artifact. An invalid one is renamed out of
// the set of valid backups when quarantine is enabled; it is never deleted.
func (uc *Verifier) Execute(ctx context.Context, artifact domain.Artifact) error {
	log := loggerFrom(ctx, uc.logger)
	err := uc.test(artifact.Filename)
	if err == nil {
		log.Infow("Backup integrity verified",
			"event", domain.EventIntegrityOK,
			"file", artifact.Filename,
			"size_bytes", artifact.Size,
		)
		return nil
	}

	log.Warnw("Backup integrity check failed",
		"event", domain.EventIntegrityFailed,
		"file", artifact.Filename,
		"error", err,
	)

	if uc.quarantine {
		quarantined, qErr := uc.storage.Quarantine(artifact.Filename)
		if qErr != nil {
			log.Errorw("Failed to quarantine backup",
				"event", domain.EventIntegrityFailed,
				"file", artifact.Filename,
				"error", qErr,
			)
		} else {
			log.Warnw("Backup quarantined",
				"event", domain.EventArtifactQuarantined,
				"file", artifact.Filename,
				"quarantined_as", quarantined,
			)
		}
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrIntegrityCheckFailed, artifact.Filename, err)
}

func (uc *Verifier) test(filename string) error {
	reader, err := uc.storage.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	return uc.compressor.Test(reader)
}
