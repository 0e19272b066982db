package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashwanth2007/TheVibeCoders/internal/export"
	"github.com/ashwanth2007/TheVibeCoders/internal/filetree"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// ApplyGuard bridges manual REST mutations and live studio sessions. It
// refuses edits while an apply is animating, so user edits and AI-typed
// characters never interleave in the same buffer, and it is told after
// every successful external write so an open session reloads its history
// instead of overwriting the change on its next commit.
type ApplyGuard interface {
	ApplyActive(projectID string) bool
	HistoryChanged(ctx context.Context, projectID string)
}

// Indexer keeps the semantic search index in sync with project CRUD.
// Index failures are logged, never surfaced; search is advisory.
type Indexer interface {
	IndexProject(ctx context.Context, p *Project) error
	RemoveProject(ctx context.Context, id string) error
}

// RegisterRoutes mounts the project REST API.
func RegisterRoutes(r chi.Router, store *Store, guard ApplyGuard, indexer Indexer) {
	h := &handlers{store: store, guard: guard, indexer: indexer}

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.rename)
		r.Delete("/{id}", h.delete)

		r.Get("/{id}/files", h.files)
		r.Put("/{id}/files", h.saveFile)
		r.Post("/{id}/files/rename", h.renameFile)
		r.Delete("/{id}/files", h.deleteFile)

		r.Post("/{id}/history/undo", h.undo)
		r.Post("/{id}/history/redo", h.redo)
		r.Post("/{id}/history/restore", h.restore)

		r.Get("/{id}/export", h.export)
	})
}

type handlers struct {
	store   *Store
	guard   ApplyGuard
	indexer Indexer
}

func (h *handlers) applyActive(id string) bool {
	return h.guard != nil && h.guard.ApplyActive(id)
}

func (h *handlers) historyChanged(ctx context.Context, id string) {
	if h.guard != nil {
		h.guard.HistoryChanged(ctx, id)
	}
}

func (h *handlers) index(ctx context.Context, p *Project) {
	if h.indexer == nil {
		return
	}
	if err := h.indexer.IndexProject(ctx, p); err != nil {
		log.Printf("project: indexing %s: %v", p.ID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store/domain errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	var pathErr *vfs.PathError
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.As(err, &pathErr):
		writeError(w, http.StatusBadRequest, pathErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		InitialPrompt string `json:"initialPrompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.store.Create(r.Context(), req.Name, req.InitialPrompt)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.index(r.Context(), p)
	writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.store.Rename(r.Context(), id, req.Name); err != nil {
		writeStoreError(w, err)
		return
	}
	if p, err := h.store.Get(r.Context(), id); err == nil {
		h.index(r.Context(), p)
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if h.indexer != nil {
		if err := h.indexer.RemoveProject(r.Context(), id); err != nil {
			log.Printf("project: unindexing %s: %v", id, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// fileState is the response shape for every file-level operation: the
// committed set, its tree projection and the history cursor.
type fileState struct {
	Files        vfs.FileSet      `json:"files"`
	Tree         []*filetree.Node `json:"tree"`
	CurrentIndex int              `json:"currentIndex"`
	Versions     int              `json:"versions"`
	Checksum     string           `json:"checksum"`
}

func stateOf(p *Project) fileState {
	var files vfs.FileSet
	var checksum string
	if entry, ok := p.History.Current(); ok {
		files = entry.Files
		checksum = entry.Checksum
	}
	return fileState{
		Files:        files,
		Tree:         filetree.Project(files),
		CurrentIndex: p.History.CurrentIndex,
		Versions:     p.History.Len(),
		Checksum:     checksum,
	}
}

func (h *handlers) files(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(p))
}

// mutateFiles loads the project, applies fn to the current file set,
// appends the result as a new history entry and persists. It enforces the
// apply-session mutual exclusion for all manual edits.
func (h *handlers) mutateFiles(w http.ResponseWriter, r *http.Request, prompt string, fn func(vfs.FileSet) (vfs.FileSet, error)) {
	id := chi.URLParam(r, "id")
	if h.applyActive(id) {
		writeError(w, http.StatusConflict, "an AI apply is in progress; manual edits are disabled")
		return
	}

	p, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var current vfs.FileSet
	if entry, ok := p.History.Current(); ok {
		current = entry.Files
	}

	next, err := fn(current)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	p.History.Append(next, prompt)
	if err := h.store.SaveHistory(r.Context(), id, p.History); err != nil {
		writeStoreError(w, err)
		return
	}
	h.historyChanged(r.Context(), id)
	writeJSON(w, http.StatusOK, stateOf(p))
}

func (h *handlers) saveFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := vfs.ValidatePath(req.Path); err != nil {
		writeStoreError(w, err)
		return
	}
	h.mutateFiles(w, r, "Manual edit of "+req.Path, func(current vfs.FileSet) (vfs.FileSet, error) {
		return current.WithFile(req.Path, req.Content), nil
	})
}

func (h *handlers) renameFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mutateFiles(w, r, fmt.Sprintf("Renamed %s to %s", req.From, req.To), func(current vfs.FileSet) (vfs.FileSet, error) {
		return current.Renamed(req.From, req.To)
	})
}

func (h *handlers) deleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	h.mutateFiles(w, r, "Deleted "+path, func(current vfs.FileSet) (vfs.FileSet, error) {
		if !current.Contains(path) {
			return nil, &vfs.PathError{Path: path, Reason: "no such file"}
		}
		return current.Without(path), nil
	})
}

// moveCursor handles undo/redo: cursor-only moves, persisted.
func (h *handlers) moveCursor(w http.ResponseWriter, r *http.Request, redo bool) {
	id := chi.URLParam(r, "id")
	if h.applyActive(id) {
		writeError(w, http.StatusConflict, "an AI apply is in progress")
		return
	}

	p, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if redo {
		_, err = p.History.Redo()
	} else {
		_, err = p.History.Undo()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveHistory(r.Context(), id, p.History); err != nil {
		writeStoreError(w, err)
		return
	}
	h.historyChanged(r.Context(), id)
	writeJSON(w, http.StatusOK, stateOf(p))
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request) { h.moveCursor(w, r, false) }
func (h *handlers) redo(w http.ResponseWriter, r *http.Request) { h.moveCursor(w, r, true) }

func (h *handlers) restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.applyActive(id) {
		writeError(w, http.StatusConflict, "an AI apply is in progress")
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := p.History.Restore(req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SaveHistory(r.Context(), id, p.History); err != nil {
		writeStoreError(w, err)
		return
	}
	h.historyChanged(r.Context(), id)
	writeJSON(w, http.StatusOK, stateOf(p))
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entry, ok := p.History.Current()
	if !ok {
		writeError(w, http.StatusConflict, "project has no files yet")
		return
	}

	var include, exclude []string
	if v := r.URL.Query().Get("include"); v != "" {
		include = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("exclude"); v != "" {
		exclude = strings.Split(v, ",")
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Name+".zip"))
	if err := export.Archive(w, entry.Files, include, exclude); err != nil {
		log.Printf("project: exporting %s: %v", p.ID, err)
	}
}
