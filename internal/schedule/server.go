// Package schedule serves the node store over HTTP and announces every write
// on a redis channel.
package schedule

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const DefaultEventsChannel = "broadcast"

type Server struct {
	store   NodeStore
	rdb     *redis.Client
	channel string
}

// NewServer wires the API to store. rdb may be nil, in which case writes are
// not announced.
func NewServer(store NodeStore, rdb *redis.Client, channel string) *Server {
	if channel == "" {
		channel = DefaultEventsChannel
	}
	return &Server{
		store:   store,
		rdb:     rdb,
		channel: channel,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Get("/nodes", s.handleListNodes)
		r.Post("/nodes", s.handleCreateNode)
		r.Patch("/nodes/{id}", s.handlePatchNode)
		r.Post("/nodes/batch-delete", s.handleBatchDelete)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "schedule-service",
	})
}
