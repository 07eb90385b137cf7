package api

import "github.com/Liam-Deacon/zettelkasten-mcp/internal/models"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	NoteType string   `json:"note_type"`
	Tags     []string `json:"tags"`
}

// UpdateNoteRequest is the request body for a partial note update.
// Absent fields are retained; an explicit empty tags array clears tags.
type UpdateNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	NoteType *string   `json:"note_type"`
	Tags     *[]string `json:"tags"`
}

// CreateLinkRequest is the request body for linking two notes.
type CreateLinkRequest struct {
	SourceID      string `json:"source_id"`
	TargetID      string `json:"target_id"`
	LinkType      string `json:"link_type"`
	Description   string `json:"description"`
	Bidirectional bool   `json:"bidirectional"`
}

// LinkResponse returns both notes touched by a link mutation.
type LinkResponse struct {
	Source *models.Note `json:"source"`
	Target *models.Note `json:"target"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []*models.Note `json:"notes"`
	Total int            `json:"total"`
}

// SearchResponse wraps combined-search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// GraphNode is a node in the knowledge graph, annotated with its link degree.
type GraphNode struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Degree int    `json:"degree"`
}

// GraphLink is a typed edge in the knowledge graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// TagListResponse wraps the tag index.
type TagListResponse struct {
	Tags []models.Tag `json:"tags"`
}

// RebuildResponse reports the outcome of an index rebuild.
type RebuildResponse struct {
	Notes int `json:"notes"`
}
