package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/search"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(zettelSvc *zettel.Service, searchSvc *search.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(zettelSvc, searchSvc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Patch("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Link graph.
	r.Get("/notes/{id}/linked", h.LinkedNotes)
	r.Get("/notes/{id}/similar", h.SimilarNotes)
	r.Post("/links", h.CreateLink)
	r.Delete("/links", h.RemoveLink)

	// Search and analytics.
	r.Get("/search", h.Search)
	r.Get("/analytics/central", h.Central)
	r.Get("/analytics/orphans", h.Orphans)
	r.Get("/analytics/dates", h.ByDate)

	// Tags, graph, maintenance.
	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}/notes", h.NotesByTag)
	r.Get("/graph", h.Graph)
	r.Post("/rebuild", h.Rebuild)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
