package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "broadcast"

type Server struct {
	hub      *Hub
	rdb      *redis.Client
	ctx      context.Context
	channel  string
	upgrader websocket.Upgrader
}

// NewServer builds the fan-out server. When allowedOrigin is set, browser
// handshakes from any other origin are refused; requests without an Origin
// header (non-browser clients) are accepted.
func NewServer(hub *Hub, rdb *redis.Client, ctx context.Context, allowedOrigin, channel string) *Server {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Server{
		hub:     hub,
		rdb:     rdb,
		ctx:     ctx,
		channel: channel,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Post("/events", s.handleEvents)

	return r
}

// RunRedisSubscriber forwards every message on the events channel to the hub
// until the server context ends.
func (s *Server) RunRedisSubscriber() {
	sub := s.rdb.Subscribe(s.ctx, s.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.hub.Broadcast([]byte(msg.Payload))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "realtime-service",
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime-service: ws upgrade: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	welcome := map[string]any{
		"type": "welcome",
		"now":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	go client.writePump()
	go client.readPump()
}

// handleEvents republishes an arbitrary JSON event on the redis channel so
// every realtime instance delivers it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode error")
		return
	}
	if err := s.rdb.Publish(r.Context(), s.channel, string(data)).Err(); err != nil {
		log.Printf("realtime-service: publish: %v", err)
		writeError(w, http.StatusInternalServerError, "redis error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
