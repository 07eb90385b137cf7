// Package models defines the domain types for the Zettelkasten.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
)

// NoteType classifies a note's role in the Zettelkasten method.
type NoteType string

// Note types.
const (
	NoteTypeFleeting   NoteType = "fleeting"
	NoteTypeLiterature NoteType = "literature"
	NoteTypePermanent  NoteType = "permanent"
	NoteTypeStructure  NoteType = "structure"
	NoteTypeHub        NoteType = "hub"
)

// NoteTypes lists every valid note type.
var NoteTypes = []NoteType{
	NoteTypeFleeting,
	NoteTypeLiterature,
	NoteTypePermanent,
	NoteTypeStructure,
	NoteTypeHub,
}

// ParseNoteType converts a string to a NoteType, case-insensitively.
func ParseNoteType(s string) (NoteType, error) {
	nt := NoteType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range NoteTypes {
		if nt == known {
			return nt, nil
		}
	}
	return "", fmt.Errorf("%w: invalid note type %q", apperr.ErrValidation, s)
}

// LinkType describes the semantic relationship a link expresses.
type LinkType string

// Link types.
const (
	LinkTypeReference   LinkType = "reference"
	LinkTypeExtends     LinkType = "extends"
	LinkTypeRefines     LinkType = "refines"
	LinkTypeContradicts LinkType = "contradicts"
	LinkTypeQuestions   LinkType = "questions"
	LinkTypeSupports    LinkType = "supports"
	LinkTypeRelated     LinkType = "related"
)

// LinkTypes lists every valid link type.
var LinkTypes = []LinkType{
	LinkTypeReference,
	LinkTypeExtends,
	LinkTypeRefines,
	LinkTypeContradicts,
	LinkTypeQuestions,
	LinkTypeSupports,
	LinkTypeRelated,
}

// ParseLinkType converts a string to a LinkType, case-insensitively.
func ParseLinkType(s string) (LinkType, error) {
	lt := LinkType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range LinkTypes {
		if lt == known {
			return lt, nil
		}
	}
	return "", fmt.Errorf("%w: invalid link type %q", apperr.ErrValidation, s)
}

// Tag is a normalized label attached to a note.
type Tag struct {
	Name string `json:"name"`
}

// NormalizeTag lowercases and trims a tag name. The same policy is applied
// to storage, lookup, and equality so the three never disagree.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewTags builds a deduplicated tag set from raw names, dropping empties.
func NewTags(names []string) []Tag {
	seen := make(map[string]struct{}, len(names))
	var out []Tag
	for _, n := range names {
		norm := NormalizeTag(n)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, Tag{Name: norm})
	}
	return out
}

// Link is a directed, typed edge stored on its source note.
type Link struct {
	SourceID    string    `json:"source_id"`
	TargetID    string    `json:"target_id"`
	LinkType    LinkType  `json:"link_type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is an atomic unit of content stored as one Markdown file.
// ID is assigned once at creation and never reused.
type Note struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	NoteType  NoteType          `json:"note_type"`
	Tags      []Tag             `json:"tags,omitempty"`
	Links     []Link            `json:"links,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// HasTag reports whether the note carries the given tag (normalized compare).
func (n *Note) HasTag(name string) bool {
	norm := NormalizeTag(name)
	for _, t := range n.Tags {
		if t.Name == norm {
			return true
		}
	}
	return false
}

// HasLink reports whether the note already carries the exact
// (target, type) edge.
func (n *Note) HasLink(targetID string, linkType LinkType) bool {
	for _, l := range n.Links {
		if l.TargetID == targetID && l.LinkType == linkType {
			return true
		}
	}
	return false
}

// AddLink appends an outgoing edge to the note.
func (n *Note) AddLink(targetID string, linkType LinkType, description string) {
	n.Links = append(n.Links, Link{
		SourceID:    n.ID,
		TargetID:    targetID,
		LinkType:    linkType,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

// RemoveLinksTo drops every outgoing edge to targetID regardless of type
// and reports whether anything was removed.
func (n *Note) RemoveLinksTo(targetID string) bool {
	kept := n.Links[:0]
	removed := false
	for _, l := range n.Links {
		if l.TargetID == targetID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	n.Links = kept
	return removed
}

// Validate checks the fields a note must carry before persisting.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title must not be empty", apperr.ErrValidation)
	}
	if _, err := ParseNoteType(string(n.NoteType)); err != nil {
		return err
	}
	for _, l := range n.Links {
		if _, err := ParseLinkType(string(l.LinkType)); err != nil {
			return err
		}
	}
	return nil
}

// LinkDirection selects which edges FindLinkedNotes follows.
type LinkDirection string

// Link directions.
const (
	DirectionOutgoing LinkDirection = "outgoing"
	DirectionIncoming LinkDirection = "incoming"
	DirectionBoth     LinkDirection = "both"
)

// ParseLinkDirection converts a string to a LinkDirection.
func ParseLinkDirection(s string) (LinkDirection, error) {
	switch d := LinkDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return d, nil
	default:
		return "", fmt.Errorf("%w: invalid direction %q", apperr.ErrValidation, s)
	}
}

// SearchCriteria is the structured filter evaluated against the index store.
// Zero-value fields are unconstrained; all set fields combine with AND.
type SearchCriteria struct {
	Title         string     // substring, case-insensitive
	Content       string     // substring, case-insensitive
	NoteType      NoteType   // exact match
	Tags          []string   // note must carry every tag
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // inclusive
	UpdatedAfter  *time.Time // inclusive
	UpdatedBefore *time.Time // inclusive
	LinkedTo      string     // notes with an outgoing link to this id
	LinkedFrom    string     // notes targeted by this id's outgoing links
}

// SearchResult pairs a note with the criteria it matched.
type SearchResult struct {
	Note            *Note    `json:"note"`
	MatchedCriteria []string `json:"matched_criteria"`
}

// RankedNote pairs a note with a numeric rank such as link degree.
type RankedNote struct {
	Note   *Note `json:"note"`
	Degree int   `json:"degree"`
}

// ScoredNote pairs a note with a similarity score in [0,1].
type ScoredNote struct {
	Note  *Note   `json:"note"`
	Score float64 `json:"score"`
}
