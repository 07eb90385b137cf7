package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/search"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	zettel *zettel.Service
	search *search.Service
}

// NewHandler creates a new Handler.
func NewHandler(zettelSvc *zettel.Service, searchSvc *search.Service) *Handler {
	return &Handler{zettel: zettelSvc, search: searchSvc}
}

// splitTags parses a comma-separated tag list query parameter.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.zettel.GetAllNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}. The id falls back to a title
// lookup so clients can resolve either identifier.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.zettel.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if note == nil {
		note, err = h.zettel.GetNoteByTitle(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if note == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.NoteType == "" {
		req.NoteType = string(models.NoteTypePermanent)
	}
	noteType, err := models.ParseNoteType(req.NoteType)
	if err != nil {
		writeError(w, err)
		return
	}
	note, err := h.zettel.CreateNote(r.Context(), req.Title, req.Content, noteType, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id} with partial semantics.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	params := zettel.UpdateNoteParams{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.NoteType != nil {
		noteType, err := models.ParseNoteType(*req.NoteType)
		if err != nil {
			writeError(w, err)
			return
		}
		params.NoteType = &noteType
	}

	note, err := h.zettel.UpdateNote(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.zettel.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkedNotes handles GET /api/notes/{id}/linked?direction=both.
func (h *Handler) LinkedNotes(w http.ResponseWriter, r *http.Request) {
	dirParam := r.URL.Query().Get("direction")
	if dirParam == "" {
		dirParam = string(models.DirectionBoth)
	}
	direction, err := models.ParseLinkDirection(dirParam)
	if err != nil {
		writeError(w, err)
		return
	}
	notes, err := h.zettel.GetLinkedNotes(r.Context(), chi.URLParam(r, "id"), direction)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// SimilarNotes handles GET /api/notes/{id}/similar?threshold=0.3.
func (h *Handler) SimilarNotes(w http.ResponseWriter, r *http.Request) {
	threshold := 0.3
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid threshold"))
			return
		}
		threshold = v
	}
	scored, err := h.zettel.FindSimilarNotes(r.Context(), chi.URLParam(r, "id"), threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	if scored == nil {
		scored = []models.ScoredNote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": scored})
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.LinkType == "" {
		req.LinkType = string(models.LinkTypeReference)
	}
	linkType, err := models.ParseLinkType(req.LinkType)
	if err != nil {
		writeError(w, err)
		return
	}
	source, target, err := h.zettel.CreateLink(r.Context(),
		req.SourceID, req.TargetID, linkType, req.Description, req.Bidirectional)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, LinkResponse{Source: source, Target: target})
}

// RemoveLink handles DELETE /api/links?source=&target=&bidirectional=.
func (h *Handler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sourceID, targetID := q.Get("source"), q.Get("target")
	if sourceID == "" || targetID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and target are required"))
		return
	}
	bidirectional, _ := strconv.ParseBool(q.Get("bidirectional"))
	source, target, err := h.zettel.RemoveLink(r.Context(), sourceID, targetID, bidirectional)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LinkResponse{Source: source, Target: target})
}

// Search handles GET /api/search?q=&tags=&type=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var noteType models.NoteType
	if raw := q.Get("type"); raw != "" {
		nt, err := models.ParseNoteType(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		noteType = nt
	}
	results, err := h.search.SearchCombined(r.Context(), q.Get("q"), splitTags(q.Get("tags")), noteType)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Central handles GET /api/analytics/central?limit=10.
func (h *Handler) Central(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		limit = v
	}
	ranked, err := h.search.FindCentralNotes(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranked == nil {
		ranked = []models.RankedNote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": ranked})
}

// Orphans handles GET /api/analytics/orphans.
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	notes, err := h.search.FindOrphanedNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// ByDate handles GET /api/analytics/dates?start=&end=&use_updated=.
// Dates are ISO days; the end bound covers the whole day.
func (h *Handler) ByDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var start, end *time.Time
	if raw := q.Get("start"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid start date"))
			return
		}
		start = &t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid end date"))
			return
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	useUpdated, _ := strconv.ParseBool(q.Get("use_updated"))

	notes, err := h.search.FindNotesByDateRange(r.Context(), start, end, useUpdated)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Tags handles GET /api/tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.zettel.GetAllTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// NotesByTag handles GET /api/tags/{tag}/notes.
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	notes, err := h.zettel.FindNotesByTag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	notes, err := h.zettel.GetAllNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	degree := make(map[string]int, len(notes))
	known := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		known[n.ID] = struct{}{}
	}

	links := []GraphLink{}
	for _, n := range notes {
		for _, l := range n.Links {
			degree[n.ID]++
			if _, ok := known[l.TargetID]; ok {
				degree[l.TargetID]++
			}
			links = append(links, GraphLink{
				Source: n.ID,
				Target: l.TargetID,
				Type:   string(l.LinkType),
			})
		}
	}

	nodes := make([]GraphNode, 0, len(notes))
	for _, n := range notes {
		nodes = append(nodes, GraphNode{ID: n.ID, Title: n.Title, Degree: degree[n.ID]})
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Rebuild handles POST /api/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.zettel.RebuildIndex(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	notes, err := h.zettel.GetAllNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{Notes: len(notes)})
}
