package index

import "github.com/Liam-Deacon/zettelkasten-mcp/internal/models"

// Store defines the interface for the queryable note index. It is a derived
// projection of the file store: every operation here must stay answerable
// from file content alone, so a rebuild can regenerate it from scratch.
// An alternate backend (e.g. a document database) implements this same
// interface.
type Store interface {
	UpsertNote(n *models.Note) error
	DeleteNote(id string) error
	GetNote(id string) (*models.Note, error)
	GetByTitle(title string) (*models.Note, error)
	AllNotes() ([]*models.Note, error)
	Search(c models.SearchCriteria) ([]*models.Note, error)
	FindByTag(tag string) ([]*models.Note, error)
	Backlinks(targetID string) ([]string, error)
	AllTags() ([]models.Tag, error)
	ReplaceAll(notes []*models.Note) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
