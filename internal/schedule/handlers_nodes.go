package schedule

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"channel-scheduler/internal/tree"
)

const maxNameLen = 200

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLen
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.store.ListNodes(r.Context())
	if err != nil {
		writeStoreError(w, "list nodes", err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var n tree.Node
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n.ID = ""
	n.Children = nil
	n.Name = strings.TrimSpace(n.Name)

	if !n.Type.Valid() {
		writeError(w, http.StatusBadRequest, `invalid type (must be "channel", "playlist" or "bucket")`)
		return
	}
	if !validName(n.Name) {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}
	if n.Order < 0 {
		writeError(w, http.StatusBadRequest, "order must not be negative")
		return
	}

	created, err := s.store.CreateNode(ctx, n)
	if err != nil {
		writeStoreError(w, "create node", err)
		return
	}

	s.publishEvent(ctx, EventNodeCreated, map[string]any{"node": created})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var p tree.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if !validName(name) {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
			return
		}
		p.Name = &name
	}
	if p.Order != nil && *p.Order < 0 {
		writeError(w, http.StatusBadRequest, "order must not be negative")
		return
	}

	n, err := s.store.UpdateNode(ctx, id, p)
	if err != nil {
		writeStoreError(w, "update node", err)
		return
	}

	s.publishEvent(ctx, EventNodeUpdated, map[string]any{"node": n})
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.IDs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	removed, err := s.store.DeleteNodes(ctx, body.IDs)
	if err != nil {
		writeStoreError(w, "delete nodes", err)
		return
	}

	if removed > 0 {
		s.publishEvent(ctx, EventNodesDeleted, map[string]any{"ids": body.IDs})
	}
	w.WriteHeader(http.StatusNoContent)
}
