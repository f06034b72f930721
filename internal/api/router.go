package api

import (
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(st TaskStore, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	var mu sync.Mutex
	healthH := NewHealthHandler(&mu, st)
	taskH := NewTaskHandler(&mu, st)

	r.Get("/health", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/{id}", taskH.Get)
			r.Delete("/{id}", taskH.Delete)
		})
	})

	return r
}
