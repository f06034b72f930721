package api

import (
	"net/http"
	"sync"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
)

type HealthHandler struct {
	mu    *sync.Mutex
	store TaskStore
}

func NewHealthHandler(mu *sync.Mutex, st TaskStore) *HealthHandler {
	return &HealthHandler{mu: mu, store: st}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok"}

	h.mu.Lock()
	count, err := h.store.Count()
	h.mu.Unlock()
	if err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		resp.TaskCount = count
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
