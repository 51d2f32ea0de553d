package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/semmidev/dumpkeeper/internal/domain"
)

// LocalStorage is a flat directory of artifacts. Directory listing, file
// names and modification times are the whole queryable state.
type LocalStorage struct {
	basePath string
}

func NewLocal(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (l *LocalStorage) Create(filename string) (domain.PendingArtifact, error) {
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid artifact name %q", filename)
	}

	finalPath := filepath.Join(l.basePath, filename)
	if _, err := os.Lstat(finalPath); err == nil {
		return nil, fmt.Errorf("artifact %s already exists", filename)
	}

	partialPath := filepath.Join(l.basePath, domain.PartialName(filename))
	file, err := os.OpenFile(partialPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to create dest: %w", err)
	}

	return &pendingFile{
		file:        file,
		partialPath: partialPath,
		finalPath:   finalPath,
		filename:    filename,
	}, nil
}

func (l *LocalStorage) List(ctx context.Context) ([]domain.Artifact, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var artifacts []domain.Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		dbName, createdAt, quarantined, ok := domain.ParseArtifactName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}

		artifacts = append(artifacts, domain.Artifact{
			DatabaseName: dbName,
			Filename:     entry.Name(),
			FilePath:     filepath.Join(l.basePath, entry.Name()),
			Size:         info.Size(),
			CreatedAt:    createdAt,
			ModTime:      info.ModTime(),
			Quarantined:  quarantined,
		})
	}

	return artifacts, nil
}

func (l *LocalStorage) Open(filename string) (io.ReadCloser, error) {
	file, err := os.Open(l.GetPath(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	return file, nil
}

func (l *LocalStorage) Delete(ctx context.Context, filename string) error {
	if err := os.Remove(l.GetPath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Quarantine renames an artifact so it is no longer counted as a valid
// backup. Retention still sees it.
func (l *LocalStorage) Quarantine(filename string) (string, error) {
	if strings.HasSuffix(filename, domain.QuarantineSuffix) {
		return filename, nil
	}

	quarantined := filename + domain.QuarantineSuffix
	if err := os.Rename(l.GetPath(filename), l.GetPath(quarantined)); err != nil {
		return "", fmt.Errorf("failed to quarantine file: %w", err)
	}
	return quarantined, nil
}

// RemovePartials deletes leftovers of writes that were interrupted before
// commit, e.g. by the process being killed mid-dump.
func (l *LocalStorage) RemovePartials() ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".partial") {
			continue
		}

		original := strings.TrimSuffix(strings.TrimPrefix(name, "."), ".partial")
		if _, _, _, ok := domain.ParseArtifactName(original); !ok {
			continue
		}

		if err := os.Remove(l.GetPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("failed to delete file: %w", err)
		}
		removed = append(removed, name)
	}

	return removed, nil
}

func (l *LocalStorage) GetPath(filename string) string {
	return filepath.Join(l.basePath, filename)
}

type pendingFile struct {
	file        *os.File
	partialPath string
	finalPath   string
	filename    string
	done        bool
}

func (p *pendingFile) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Commit makes the artifact visible under its final name. The rename is the
// last step that can fail, so an error always means nothing was published.
func (p *pendingFile) Commit() (domain.Artifact, error) {
	if p.done {
		return domain.Artifact{}, fmt.Errorf("artifact %s already finished", p.filename)
	}

	if err := p.file.Sync(); err != nil {
		_ = p.Abort()
		return domain.Artifact{}, fmt.Errorf("failed to sync: %w", err)
	}
	// Size is read back from disk, not tracked while writing.
	info, err := p.file.Stat()
	if err != nil {
		_ = p.Abort()
		return domain.Artifact{}, fmt.Errorf("stat backup file: %w", err)
	}
	if err := p.file.Close(); err != nil {
		_ = p.Abort()
		return domain.Artifact{}, fmt.Errorf("failed to close: %w", err)
	}
	if err := os.Rename(p.partialPath, p.finalPath); err != nil {
		_ = p.Abort()
		return domain.Artifact{}, fmt.Errorf("failed to rename: %w", err)
	}
	p.done = true

	dbName, createdAt, _, _ := domain.ParseArtifactName(p.filename)
	return domain.Artifact{
		DatabaseName: dbName,
		Filename:     p.filename,
		FilePath:     p.finalPath,
		Size:         info.Size(),
		CreatedAt:    createdAt,
		ModTime:      info.ModTime(),
	}, nil
}

func (p *pendingFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true

	_ = p.file.Close()
	if err := os.Remove(p.partialPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove partial file: %w", err)
	}
	return nil
}
