// Package repository orchestrates the file store and the index behind one
// contract. Files are the record of truth: every mutation writes the file
// first and the index second, so a mid-operation crash always leaves state
// recoverable by RebuildIndex.
package repository

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/codec"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/index"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/storage"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zid"
)

// Repository coordinates the file store, the index store, and id
// generation. A single mutex serializes mutating calls; reads go straight
// to the index and may run concurrently.
type Repository struct {
	mu     sync.Mutex
	store  storage.Provider
	idx    index.Store
	ids    *zid.Generator
	logger *slog.Logger
}

// New creates a Repository over the given stores.
func New(store storage.Provider, idx index.Store, ids *zid.Generator, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, idx: idx, ids: ids, logger: logger}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorage, op, err)
}

// Create persists a new note: assign an id when absent, write the file,
// then insert the index row. A pre-assigned id that already has a file is
// a conflict.
func (r *Repository) Create(n *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = r.ids.Generate(r.store.Exists)
	} else if !zid.Valid(n.ID) {
		return nil, fmt.Errorf("%w: malformed note id %q", apperr.ErrValidation, n.ID)
	} else if r.store.Exists(n.ID) {
		return nil, fmt.Errorf("%w: note %s already exists", apperr.ErrConflict, n.ID)
	}

	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	for i := range n.Links {
		n.Links[i].SourceID = n.ID
	}

	if err := r.store.Write(n.ID, codec.Encode(n)); err != nil {
		return nil, storageErr("write note file", err)
	}
	if err := r.idx.UpsertNote(n); err != nil {
		// The file is already durable; the note stays recoverable by rebuild.
		return nil, storageErr("index note", err)
	}
	return n, nil
}

// Get returns a note by id from the index, or nil when absent.
func (r *Repository) Get(id string) (*models.Note, error) {
	n, err := r.idx.GetNote(id)
	if err != nil {
		return nil, storageErr("get note", err)
	}
	return n, nil
}

// GetByTitle returns the note with the exact title, or nil when absent.
func (r *Repository) GetByTitle(title string) (*models.Note, error) {
	n, err := r.idx.GetByTitle(title)
	if err != nil {
		return nil, storageErr("get note by title", err)
	}
	return n, nil
}

// GetAll returns every note ordered by id.
func (r *Repository) GetAll() ([]*models.Note, error) {
	notes, err := r.idx.AllNotes()
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	return notes, nil
}

// Update fully replaces a note: the file is rewritten from the structured
// form, UpdatedAt is refreshed, and the index row is replaced.
func (r *Repository) Update(n *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Exists(n.ID) {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, n.ID)
	}

	n.UpdatedAt = time.Now()
	for i := range n.Links {
		n.Links[i].SourceID = n.ID
	}

	if err := r.store.Write(n.ID, codec.Encode(n)); err != nil {
		return nil, storageErr("write note file", err)
	}
	if err := r.idx.UpsertNote(n); err != nil {
		return nil, storageErr("index note", err)
	}
	return n, nil
}

// Delete removes a note's file and index row.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Exists(id) {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	if err := r.store.Delete(id); err != nil {
		return storageErr("delete note file", err)
	}
	if err := r.idx.DeleteNote(id); err != nil {
		return storageErr("delete index row", err)
	}
	return nil
}

// Search evaluates structured criteria against the index only.
func (r *Repository) Search(c models.SearchCriteria) ([]*models.Note, error) {
	notes, err := r.idx.Search(c)
	if err != nil {
		return nil, storageErr("search", err)
	}
	return notes, nil
}

// FindByTag returns every note carrying the tag.
func (r *Repository) FindByTag(tag string) ([]*models.Note, error) {
	notes, err := r.idx.FindByTag(tag)
	if err != nil {
		return nil, storageErr("find by tag", err)
	}
	return notes, nil
}

// FindLinkedNotes returns the notes connected to id in the given
// direction. Outgoing neighbours come from the note's own links, incoming
// ones from an index scan over link targets. Results are deduplicated and
// ordered by id; the note itself is excluded.
func (r *Repository) FindLinkedNotes(id string, direction models.LinkDirection) ([]*models.Note, error) {
	found := make(map[string]*models.Note)

	if direction == models.DirectionOutgoing || direction == models.DirectionBoth {
		n, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		if n != nil {
			for _, l := range n.Links {
				target, err := r.Get(l.TargetID)
				if err != nil {
					return nil, err
				}
				if target != nil && target.ID != id {
					found[target.ID] = target
				}
			}
		}
	}

	if direction == models.DirectionIncoming || direction == models.DirectionBoth {
		sources, err := r.idx.Backlinks(id)
		if err != nil {
			return nil, storageErr("backlinks", err)
		}
		for _, src := range sources {
			if src == id {
				continue
			}
			n, err := r.Get(src)
			if err != nil {
				return nil, err
			}
			if n != nil {
				found[n.ID] = n
			}
		}
	}

	out := make([]*models.Note, 0, len(found))
	for _, n := range found {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetAllTags returns the deduplicated tag set. Sorting is a caller concern.
func (r *Repository) GetAllTags() ([]models.Tag, error) {
	tags, err := r.idx.AllTags()
	if err != nil {
		return nil, storageErr("all tags", err)
	}
	return tags, nil
}

// RebuildIndex regenerates the entire index from the note files: every
// file is decoded (id from filename, UpdatedAt from mtime) and the index
// content is replaced with exactly that set. Files that cannot be read or
// decoded are logged and skipped so one corrupt file cannot block
// recovery. The operation is idempotent and safe on an empty store.
func (r *Repository) RebuildIndex() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	files, err := r.store.List()
	if err != nil {
		return storageErr("list note files", err)
	}

	notes := make([]*models.Note, 0, len(files))
	for _, f := range files {
		data, err := r.store.Read(f.ID)
		if err != nil {
			r.logger.Warn("rebuild: read failed",
				slog.String("id", f.ID), slog.String("error", err.Error()))
			continue
		}
		res, err := codec.Decode(data)
		if err != nil {
			r.logger.Warn("rebuild: decode failed",
				slog.String("id", f.ID), slog.String("error", err.Error()))
			continue
		}
		for _, w := range res.Warnings {
			r.logger.Warn("rebuild: decode warning",
				slog.String("id", f.ID), slog.String("warning", w))
		}

		n := res.Note
		n.ID = f.ID
		n.UpdatedAt = f.ModTime
		if n.CreatedAt.IsZero() {
			// Hand-written files may lack a Created line; the id encodes
			// the creation timestamp.
			if ts, perr := time.ParseInLocation(zid.DefaultFormat, f.ID[:15], time.Local); perr == nil {
				n.CreatedAt = ts
			} else {
				n.CreatedAt = f.ModTime
			}
		}
		for i := range n.Links {
			n.Links[i].SourceID = n.ID
			if n.Links[i].CreatedAt.IsZero() {
				n.Links[i].CreatedAt = n.CreatedAt
			}
		}
		notes = append(notes, n)
	}

	if err := r.idx.ReplaceAll(notes); err != nil {
		return storageErr("replace index", err)
	}
	r.logger.Info("index rebuilt", slog.Int("notes", len(notes)))
	return nil
}
