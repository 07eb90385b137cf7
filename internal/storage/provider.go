// Package storage defines the note file-store abstraction.
// The directory of note files is the single source of truth; everything in
// the index is derivable from it.
package storage

import "time"

// FileInfo identifies one note file on disk.
type FileInfo struct {
	ID      string
	ModTime time.Time
}

// Provider is the interface for note file operations. Note files are keyed
// by note id; the provider owns the id-to-filename mapping.
type Provider interface {
	// List returns every note file in the store.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of the note file for id.
	Read(id string) ([]byte, error)
	// Write atomically writes the note file for id.
	Write(id string, content []byte) error
	// Delete removes the note file for id.
	Delete(id string) error
	// Exists reports whether a note file for id is present.
	Exists(id string) bool
}
