package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/projects"
	"github.com/almahq/alma/internal/search"
	"github.com/almahq/alma/internal/sse"
	"github.com/almahq/alma/internal/wikilink"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *notes.Service
	registry *projects.Registry
	broker   *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil (no event publishing).
func NewHandler(svc *notes.Service, registry *projects.Registry, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, registry: registry, broker: broker}
}

func (h *Handler) publish(eventType, id string) {
	if h.broker != nil {
		h.broker.PublishNote(eventType, id)
	}
}

// writeError maps core errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /api/notes with project/tag filters and pagination.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 {
		limit = 50
	}

	items, err := h.svc.List(r.Context(), notes.ListOptions{
		Project: q.Get("project"),
		Tag:     q.Get("tag"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, err, "list notes")
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.Read(r.Context(), id)
	if err != nil {
		writeError(w, err, "get note")
		return
	}
	writeJSON(w, http.StatusOK, h.noteResponse(r, note))
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	if req.Project != "" && !h.registry.Exists(req.Project) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown project"))
		return
	}

	note, err := h.svc.Create(r.Context(), req.Content, req.Project, req.Type, req.Tags)
	if err != nil {
		writeError(w, err, "create note")
		return
	}
	h.publish(sse.NoteCreated, note.ID)
	writeJSON(w, http.StatusCreated, h.noteResponse(r, note))
}

// UpdateNote handles PUT /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	if req.Project != "" && !h.registry.Exists(req.Project) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown project"))
		return
	}

	note, err := h.svc.Update(r.Context(), id, req.Content, req.Tags, req.Project)
	if err != nil {
		writeError(w, err, "update note")
		return
	}
	h.publish(sse.NoteUpdated, note.ID)
	writeJSON(w, http.StatusOK, h.noteResponse(r, note))
}

// DeleteNote handles DELETE /api/notes/{id}. Deletion is idempotent: a
// missing id still returns 200 with deleted=false.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err, "delete note")
		return
	}
	if deleted {
		h.publish(sse.NoteDeleted, id)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, err, "list tags")
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, err, "search")
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// Backlinks handles GET /api/backlinks?title=...
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	ids, err := h.svc.Backlinks(r.Context(), title)
	if err != nil {
		writeError(w, err, "backlinks")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"backlinks": ids})
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, _ *http.Request) {
	list, err := h.registry.All()
	if err != nil {
		writeError(w, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: list})
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in projects.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	project, err := h.registry.Create(in)
	if err != nil {
		writeError(w, err, "create project")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// UpdateProject handles PUT /api/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in projects.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	project, err := h.registry.Update(id, in)
	if err != nil {
		writeError(w, err, "update project")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.Delete(id); err != nil {
		writeError(w, err, "delete project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Regenerate handles POST /api/admin/regenerate.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Regenerate(r.Context())
	if err != nil {
		writeError(w, err, "regenerate")
		return
	}
	if h.broker != nil {
		h.broker.PublishRegenerated(res.Indexed, res.Skipped)
	}
	writeJSON(w, http.StatusOK, res)
}

// noteResponse enriches a note with backlinks and resolved outgoing links.
func (h *Handler) noteResponse(r *http.Request, note *models.Note) NoteResponse {
	resp := NoteResponse{Note: note, Backlinks: []string{}, Links: []ResolvedLink{}}

	if bl, err := h.svc.Backlinks(r.Context(), note.Title); err == nil && bl != nil {
		resp.Backlinks = bl
	}
	for _, text := range wikilink.Extract(note.Content) {
		link := ResolvedLink{Text: text}
		if id, err := h.svc.ResolveLink(r.Context(), text); err == nil && id != "" {
			link.ID = &id
		}
		resp.Links = append(resp.Links, link)
	}
	return resp
}
