package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/projects"
	"github.com/almahq/alma/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted behind the auth
// middleware. broker may be nil to disable the events endpoint.
func NewRouter(svc *notes.Service, registry *projects.Registry, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc, registry, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD and filtering.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Tags, search, backlinks.
	r.Get("/tags", h.ListTags)
	r.Get("/search", h.Search)
	r.Get("/backlinks", h.Backlinks)

	// Project registry.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)

	// Manual index regeneration.
	r.Post("/admin/regenerate", h.Regenerate)

	// SSE events.
	if broker != nil {
		r.Method(http.MethodGet, "/events", broker)
	}

	return r
}
