package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
	"github.com/iammorganparry/clive/apps/todo/internal/store"
)

// TaskStore is the subset of *store.TaskStore the HTTP shell uses.
type TaskStore interface {
	Create(date time.Time, title, description string) (int64, error)
	ListSummaries() ([]models.DisplayRow, error)
	GetDetail(id int64) (models.Task, error)
	Delete(id int64) (bool, error)
	Count() (int, error)
}

// TaskHandler serializes every store call so the store only ever sees one
// caller at a time.
type TaskHandler struct {
	mu    *sync.Mutex
	store TaskStore
	now   func() time.Time
}

func NewTaskHandler(mu *sync.Mutex, st TaskStore) *TaskHandler {
	return &TaskHandler{mu: mu, store: st, now: time.Now}
}

// List handles GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	rows, err := h.store.ListSummaries()
	h.mu.Unlock()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if rows == nil {
		rows = []models.DisplayRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Create handles POST /tasks. An omitted date means today.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	date := models.DateOf(h.now())
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	h.mu.Lock()
	id, err := h.store.Create(date, req.Title, req.Description)
	h.mu.Unlock()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateTaskResponse{ID: id})
}

// Get handles GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	task, err := h.store.GetDetail(id)
	h.mu.Unlock()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}. A missing id is not an error.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	_, err := h.store.Delete(id)
	h.mu.Unlock()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusBadRequest, "title is required")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, store.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, "store is closed")
	default:
		writeError(w, http.StatusInternalServerError, "storage error")
	}
}
