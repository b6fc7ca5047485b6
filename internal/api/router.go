package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mvoss/kasten/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Title search.
	r.Get("/search", h.SearchTitle)

	// Link graph.
	r.Get("/backlinks/*", h.Backlinks)
	r.Get("/graph", h.Graph)

	return r
}
