package remote

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one message pushed by the realtime service.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NodeEvent reports whether e announces a change to the node store.
func (e Event) NodeEvent() bool {
	return strings.HasPrefix(e.Type, "node.") || strings.HasPrefix(e.Type, "nodes.")
}

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 10 * time.Second
)

// Watch connects to the realtime websocket at wsURL and calls fn for every
// node event. Dropped connections are redialed with exponential backoff.
// Watch returns when ctx ends.
func Watch(ctx context.Context, wsURL string, fn func(Event)) error {
	backoff := minBackoff
	for {
		connected, err := watchOnce(ctx, wsURL, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = minBackoff
		}
		log.Printf("remote: watch %s: %v (retry in %s)", wsURL, err, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func watchOnce(ctx context.Context, wsURL string, fn func(Event)) (connected bool, err error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.NodeEvent() {
			fn(ev)
		}
	}
}
