// Package search provides read-only analytics over the repository:
// combined filtering, link-degree centrality, orphan detection, and
// date-range queries.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/repository"
)

// Service answers analytical queries. It only ever reads the index, so its
// calls are safe to run concurrently with each other.
type Service struct {
	repo *repository.Repository
}

// NewService creates a search service over the repository.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// SearchCombined filters notes by free text (title or content,
// case-insensitive), tag membership (every requested tag must be present),
// and note type. Criteria combine with AND; with no criteria every note is
// returned. Each result records which criteria it matched.
func (s *Service) SearchCombined(_ context.Context, text string, tags []string, noteType models.NoteType) ([]models.SearchResult, error) {
	// Tag and type filtering happen in the index; the text OR-match over
	// title/content is resolved here from the candidate set.
	candidates, err := s.repo.Search(models.SearchCriteria{
		Tags:     tags,
		NoteType: noteType,
	})
	if err != nil {
		return nil, err
	}

	var out []models.SearchResult
	for _, n := range candidates {
		var matched []string

		if text != "" {
			matchedTitle := containsFold(n.Title, text)
			matchedContent := containsFold(n.Content, text)
			if !matchedTitle && !matchedContent {
				continue
			}
			if matchedTitle {
				matched = append(matched, "title")
			}
			if matchedContent {
				matched = append(matched, "content")
			}
		}
		if len(tags) > 0 {
			matched = append(matched, "tags")
		}
		if noteType != "" {
			matched = append(matched, "note_type")
		}

		out = append(out, models.SearchResult{Note: n, MatchedCriteria: matched})
	}
	return out, nil
}

// FindCentralNotes ranks notes by link degree: the count of the note's
// outgoing links plus the count of links elsewhere targeting it. Sorted
// descending by degree with id ascending ties, truncated to limit.
func (s *Service) FindCentralNotes(ctx context.Context, limit int) ([]models.RankedNote, error) {
	ranked, err := s.rankByDegree(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.RankedNote
	for _, r := range ranked {
		if r.Degree == 0 {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindOrphanedNotes returns the notes with link degree zero: nothing
// points at them and they point at nothing.
func (s *Service) FindOrphanedNotes(ctx context.Context) ([]*models.Note, error) {
	ranked, err := s.rankByDegree(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.Note
	for _, r := range ranked {
		if r.Degree == 0 {
			out = append(out, r.Note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindNotesByDateRange returns notes whose creation time (or modification
// time when useUpdated is set) falls inside the inclusive [start, end]
// range. A nil bound is unconstrained on that side.
func (s *Service) FindNotesByDateRange(_ context.Context, start, end *time.Time, useUpdated bool) ([]*models.Note, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: date range end precedes start", apperr.ErrValidation)
	}

	c := models.SearchCriteria{}
	if useUpdated {
		c.UpdatedAfter = start
		c.UpdatedBefore = end
	} else {
		c.CreatedAfter = start
		c.CreatedBefore = end
	}
	return s.repo.Search(c)
}

// rankByDegree computes the degree of every note in one pass over the
// graph and returns notes sorted by degree descending, id ascending.
func (s *Service) rankByDegree(_ context.Context) ([]models.RankedNote, error) {
	notes, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	degree := make(map[string]int, len(notes))
	known := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		known[n.ID] = struct{}{}
	}
	for _, n := range notes {
		for _, l := range n.Links {
			degree[n.ID]++
			// Only count inbound degree for targets that still exist;
			// dangling targets can appear after manual file edits.
			if _, ok := known[l.TargetID]; ok {
				degree[l.TargetID]++
			}
		}
	}

	out := make([]models.RankedNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.RankedNote{Note: n, Degree: degree[n.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}
		return out[i].Note.ID < out[j].Note.ID
	})
	return out, nil
}

// containsFold reports whether substr occurs in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
