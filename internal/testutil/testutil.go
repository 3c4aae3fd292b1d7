// Package testutil provides shared test helpers for setting up log directories.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/anurajdeol90/team-digest/internal/storage"
)

// TestLogs creates a temporary logs directory holding files (name to content)
// and returns it with a storage.Provider rooted there.
func TestLogs(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := store.Write(name, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
