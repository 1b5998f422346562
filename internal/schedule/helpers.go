package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

const (
	EventNodeCreated  = "node.created"
	EventNodeUpdated  = "node.updated"
	EventNodesDeleted = "nodes.deleted"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidParent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("schedule-service: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "database error")
	}
}

func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("schedule-service: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, s.channel, string(data)).Err(); err != nil {
		log.Printf("schedule-service: publish event: %v", err)
	}
}
