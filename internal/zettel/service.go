// Package zettel implements the domain operations of the knowledge base:
// note lifecycle, link-graph mutation with referential-integrity
// enforcement, and content similarity.
package zettel

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/repository"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/sse"
)

// Service coordinates note and link operations over the repository.
type Service struct {
	repo   *repository.Repository
	broker *sse.Broker // optional; nil disables event publishing
	logger *slog.Logger
}

// NewService creates a zettel service. broker may be nil.
func NewService(repo *repository.Repository, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, broker: broker, logger: logger}
}

func (s *Service) publishNote(kind, id string) {
	if s.broker != nil {
		s.broker.PublishNoteEvent(kind, id)
	}
}

func (s *Service) publishLink(kind, sourceID, targetID string) {
	if s.broker != nil {
		s.broker.PublishLinkEvent(kind, sourceID, targetID)
	}
}

// CreateNote creates a new note. The id is assigned by the repository.
func (s *Service) CreateNote(_ context.Context, title, content string, noteType models.NoteType, tags []string) (*models.Note, error) {
	n := &models.Note{
		Title:    title,
		Content:  content,
		NoteType: noteType,
		Tags:     models.NewTags(tags),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(n)
	if err != nil {
		return nil, err
	}
	s.publishNote(sse.EventNoteCreated, created.ID)
	return created, nil
}

// UpdateNoteParams carries the optional fields of an update. Nil fields are
// retained from the existing note; a non-nil empty Tags slice clears tags.
type UpdateNoteParams struct {
	Title    *string
	Content  *string
	NoteType *models.NoteType
	Tags     *[]string
}

// UpdateNote applies the provided fields to an existing note and persists
// the result.
func (s *Service) UpdateNote(_ context.Context, id string, p UpdateNoteParams) (*models.Note, error) {
	n, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}

	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.NoteType != nil {
		n.NoteType = *p.NoteType
	}
	if p.Tags != nil {
		n.Tags = models.NewTags(*p.Tags)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(n)
	if err != nil {
		return nil, err
	}
	s.publishNote(sse.EventNoteUpdated, updated.ID)
	return updated, nil
}

// DeleteNote removes a note. Before the note itself goes, every link
// elsewhere in the graph that targets it is removed, so no dangling link
// target survives the delete.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	n, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}

	// Cascade: strip inbound links first.
	referrers, err := s.repo.Search(models.SearchCriteria{LinkedTo: id})
	if err != nil {
		return fmt.Errorf("delete cascade: find referrers: %w", err)
	}
	for _, ref := range referrers {
		if ref.ID == id {
			continue
		}
		if ref.RemoveLinksTo(id) {
			if _, err := s.repo.Update(ref); err != nil {
				return fmt.Errorf("delete cascade: unlink %s: %w", ref.ID, err)
			}
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishNote(sse.EventNoteDeleted, id)
	return nil
}

// CreateLink adds a typed edge from source to target. Both notes must
// exist; a duplicate (source, target, type) triple is a conflict. With
// bidirectional set, a mirrored edge of the same type is added to the
// target unless that exact triple already exists. Returns both notes.
func (s *Service) CreateLink(_ context.Context, sourceID, targetID string, linkType models.LinkType, description string, bidirectional bool) (*models.Note, *models.Note, error) {
	if _, err := models.ParseLinkType(string(linkType)); err != nil {
		return nil, nil, err
	}

	source, err := s.repo.Get(sourceID)
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		return nil, nil, fmt.Errorf("%w: source note %s", apperr.ErrNotFound, sourceID)
	}
	target, err := s.repo.Get(targetID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, fmt.Errorf("%w: target note %s", apperr.ErrNotFound, targetID)
	}

	if source.HasLink(targetID, linkType) {
		return nil, nil, fmt.Errorf("%w: link %s -[%s]-> %s already exists",
			apperr.ErrConflict, sourceID, linkType, targetID)
	}

	source.AddLink(targetID, linkType, description)
	source, err = s.repo.Update(source)
	if err != nil {
		return nil, nil, fmt.Errorf("create link: persist source: %w", err)
	}

	if bidirectional && sourceID != targetID && !target.HasLink(sourceID, linkType) {
		target.AddLink(sourceID, linkType, description)
		target, err = s.repo.Update(target)
		if err != nil {
			return nil, nil, fmt.Errorf("create link: persist mirrored link on target: %w", err)
		}
	}

	s.publishLink(sse.EventLinkCreated, sourceID, targetID)
	return source, target, nil
}

// RemoveLink removes every link from source to target regardless of type.
// With bidirectional set, target-to-source links go too. Absence of a
// matching link is not an error: removal is idempotent. Only notes that
// actually changed are persisted.
func (s *Service) RemoveLink(_ context.Context, sourceID, targetID string, bidirectional bool) (*models.Note, *models.Note, error) {
	source, err := s.repo.Get(sourceID)
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		return nil, nil, fmt.Errorf("%w: source note %s", apperr.ErrNotFound, sourceID)
	}
	target, err := s.repo.Get(targetID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, fmt.Errorf("%w: target note %s", apperr.ErrNotFound, targetID)
	}

	changed := false
	if source.RemoveLinksTo(targetID) {
		source, err = s.repo.Update(source)
		if err != nil {
			return nil, nil, fmt.Errorf("remove link: persist source: %w", err)
		}
		changed = true
	}
	if bidirectional && sourceID != targetID && target.RemoveLinksTo(sourceID) {
		target, err = s.repo.Update(target)
		if err != nil {
			return nil, nil, fmt.Errorf("remove link: persist target: %w", err)
		}
		changed = true
	}

	if changed {
		s.publishLink(sse.EventLinkRemoved, sourceID, targetID)
	}
	return source, target, nil
}

// GetLinkedNotes returns the notes connected to id in the given direction.
func (s *Service) GetLinkedNotes(_ context.Context, id string, direction models.LinkDirection) ([]*models.Note, error) {
	return s.repo.FindLinkedNotes(id, direction)
}

// FindSimilarNotes scores every other note against the reference note with
// a Jaccard word-overlap measure over title+content, keeps scores at or
// above threshold, and sorts descending by score with id ascending ties.
func (s *Service) FindSimilarNotes(_ context.Context, id string, threshold float64) ([]models.ScoredNote, error) {
	ref, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}

	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	refTokens := tokenize(ref.Title + " " + ref.Content)
	var out []models.ScoredNote
	for _, n := range all {
		if n.ID == ref.ID {
			continue
		}
		score := jaccard(refTokens, tokenize(n.Title+" "+n.Content))
		if score >= threshold {
			out = append(out, models.ScoredNote{Note: n, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Note.ID < out[j].Note.ID
	})
	return out, nil
}

// GetNote returns a note by id, or nil when absent.
func (s *Service) GetNote(_ context.Context, id string) (*models.Note, error) {
	return s.repo.Get(id)
}

// GetNoteByTitle returns a note by exact title, or nil when absent.
func (s *Service) GetNoteByTitle(_ context.Context, title string) (*models.Note, error) {
	return s.repo.GetByTitle(title)
}

// GetAllNotes returns every note.
func (s *Service) GetAllNotes(_ context.Context) ([]*models.Note, error) {
	return s.repo.GetAll()
}

// GetAllTags returns the deduplicated tag set.
func (s *Service) GetAllTags(_ context.Context) ([]models.Tag, error) {
	return s.repo.GetAllTags()
}

// FindNotesByTag returns every note carrying the tag.
func (s *Service) FindNotesByTag(_ context.Context, tag string) ([]*models.Note, error) {
	return s.repo.FindByTag(tag)
}

// RebuildIndex regenerates the index from the note files. Intended to be
// invoked after out-of-band manual file edits.
func (s *Service) RebuildIndex(_ context.Context) error {
	start := time.Now()
	if err := s.repo.RebuildIndex(); err != nil {
		return err
	}
	s.logger.Info("rebuild complete", slog.Duration("took", time.Since(start)))
	if s.broker != nil {
		s.broker.Publish(sse.Event{Type: sse.EventIndexRebuilt, Data: map[string]string{}})
	}
	return nil
}

// tokenize lowercases text and splits it into a set of word tokens.
func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		out[w] = struct{}{}
	}
	return out
}

// jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
