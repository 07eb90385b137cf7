// Package testutil provides shared test helpers for setting up note
// directories, databases, and wired services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/index"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/repository"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/search"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/storage"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zid"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "zettelkasten-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotesDir creates a temporary notes directory with a storage.Provider.
func TestNotesDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Logger returns a logger that discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRepository wires a repository over a temp notes dir and database.
func TestRepository(t *testing.T) (*repository.Repository, string) {
	t.Helper()
	dir, store := TestNotesDir(t)
	db := TestDB(t)
	return repository.New(store, db, zid.New(zid.DefaultFormat), Logger()), dir
}

// TestServices wires the zettel and search services over a fresh repository.
func TestServices(t *testing.T) (*zettel.Service, *search.Service, string) {
	t.Helper()
	repo, dir := TestRepository(t)
	return zettel.NewService(repo, nil, Logger()), search.NewService(repo), dir
}
