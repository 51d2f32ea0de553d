package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/semmidev/dumpkeeper/internal/adapter/storage"
	"github.com/semmidev/dumpkeeper/internal/domain"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fakeDatabase struct {
	mu       sync.Mutex
	name     string
	payload  []byte
	dumpErr  error
	hang     bool
	pingErrs []error
	pings    int
	dumps    int
}

func (f *fakeDatabase) Dump(ctx context.Context, w io.Writer) error {
	f.mu.Lock()
	f.dumps++
	f.mu.Unlock()

	if _, err := w.Write(f.payload); err != nil {
		return err
	}
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.dumpErr
}

func (f *fakeDatabase) GetName() string { return f.name }
func (f *fakeDatabase) GetType() string { return "postgresql" }

func (f *fakeDatabase) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	if f.pings <= len(f.pingErrs) {
		return f.pingErrs[f.pings-1]
	}
	return nil
}

func (f *fakeDatabase) Pings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

type fakeNotifier struct {
	mu          sync.Mutex
	messages    []string
	err         error
	hang        bool
	hadDeadline bool
}

func (n *fakeNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	_, n.hadDeadline = ctx.Deadline()
	hang, err := n.hang, n.err
	n.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// failingDeleteStorage fails Delete for the named files.
type failingDeleteStorage struct {
	*storage.LocalStorage
	fail map[string]bool
}

func (s *failingDeleteStorage) Delete(ctx context.Context, filename string) error {
	if s.fail[filename] {
		return errors.New("permission denied")
	}
	return s.LocalStorage.Delete(ctx, filename)
}

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func events(logs *observer.ObservedLogs) []string {
	var out []string
	for _, entry := range logs.All() {
		if ev, ok := entry.ContextMap()["event"].(string); ok {
			out = append(out, ev)
		}
	}
	return out
}

func entriesWithEvent(logs *observer.ObservedLogs, event string) []observer.LoggedEntry {
	var out []observer.LoggedEntry
	for _, entry := range logs.All() {
		if entry.ContextMap()["event"] == event {
			out = append(out, entry)
		}
	}
	return out
}

func newTempStorage(t *testing.T) (*storage.LocalStorage, string) {
	dir, err := os.MkdirTemp("", "usecase_test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	local, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	return local, dir
}

// seedArtifact writes an artifact whose name and mtime both say createdAt.
func seedArtifact(t *testing.T, dir, dbName string, createdAt time.Time, content []byte) string {
	name := domain.ArtifactName(dbName, createdAt)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, createdAt, createdAt); err != nil {
		t.Fatal(err)
	}
	return name
}

func dirEntries(dir string) []string {
	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
