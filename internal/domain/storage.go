package domain

import (
	"context"
	"io"
)

// Storage is the backup directory. It is the only state the daemon keeps.
type Storage interface {
	// Create opens a pending artifact. Nothing is visible under filename
	// until the returned PendingArtifact is committed.
	Create(filename string) (PendingArtifact, error)
	List(ctx context.Context) ([]Artifact, error)
	Open(filename string) (io.ReadCloser, error)
	Delete(ctx context.Context, filename string) error
	Quarantine(filename string) (string, error)
}

type PendingArtifact interface {
	io.Writer
	// Commit flushes, closes and renames the file into place.
	Commit() (Artifact, error)
	// Abort closes and removes the file. Safe to call after Commit.
	Abort() error
}

type Notifier interface {
	Notify(ctx context.Context, message string) error
}
