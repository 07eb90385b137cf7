package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zid"
)

const noteExt = ".md"

// FS implements Provider backed by a local directory of Markdown files,
// one file per note, named "<id>.md".
type FS struct {
	root string // absolute path to the notes directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// notePath maps an id to its absolute file path, rejecting ids that would
// escape the notes directory.
func (f *FS) notePath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || !zid.Valid(id) {
		return "", fmt.Errorf("storage: malformed note id: %q", id)
	}
	return filepath.Join(f.root, id+noteExt), nil
}

// List returns every well-named note file in the store. Files whose stem is
// not a valid id are ignored; they are not notes.
func (f *FS) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), noteExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), noteExt)
		if !zid.Valid(id) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		out = append(out, FileInfo{ID: id, ModTime: info.ModTime()})
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(id string) ([]byte, error) {
	p, err := f.notePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return data, nil
}

// Write atomically writes note content: tmp file → fsync → rename. A crash
// mid-write never leaves a partially written note behind.
func (f *FS) Write(id string, content []byte) error {
	p, err := f.notePath(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".zk-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a note file.
func (f *FS) Delete(id string) error {
	p, err := f.notePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a note file for id is present.
func (f *FS) Exists(id string) bool {
	p, err := f.notePath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}
