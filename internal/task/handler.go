package task

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/middleware"
	"github.com/ayush/task-tracker/internal/models"
)

// Handler holds task HTTP handlers. All routes sit behind RequireAuth, so the
// identity is always present in the context.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("tasks: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.ClientMessage(err)})
}

// parseFilter binds recognized query values only; anything malformed is
// ignored rather than rejected.
func parseFilter(r *http.Request) models.TaskFilter {
	var f models.TaskFilter

	switch r.URL.Query().Get("completed") {
	case "1", "true":
		v := true
		f.Completed = &v
	case "0", "false":
		v := false
		f.Completed = &v
	}

	if p, err := strconv.Atoi(r.URL.Query().Get("priority")); err == nil && p >= 1 && p <= 3 {
		f.Priority = &p
	}

	// Blank-only search is skipped, but a usable term is matched verbatim,
	// surrounding whitespace included.
	if search := r.URL.Query().Get("search"); strings.TrimSpace(search) != "" {
		f.Search = search
	}
	return f
}

// taskID pulls the numeric id from the route. A non-numeric id reports
// (0, false); callers answer 404, same as a missing row.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List returns the current user's tasks, optionally filtered by
// ?completed, ?priority and ?search.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	tasks, err := h.svc.List(r.Context(), identity.UserID, parseFilter(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a task owned by the current user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.svc.Create(r.Context(), identity.UserID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update fully replaces the mutable fields of a task.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	id, ok := taskID(r)
	if !ok {
		respondError(w, apperr.NotFound("Not found"))
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.svc.Update(r.Context(), identity.UserID, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Toggle flips a task's completed flag.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	id, ok := taskID(r)
	if !ok {
		respondError(w, apperr.NotFound("Not found"))
		return
	}

	t, err := h.svc.ToggleCompleted(r.Context(), identity.UserID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete removes a task.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	id, ok := taskID(r)
	if !ok {
		respondError(w, apperr.NotFound("Not found"))
		return
	}

	if err := h.svc.Delete(r.Context(), identity.UserID, id); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
