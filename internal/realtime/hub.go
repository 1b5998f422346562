// Package realtime fans node change events out to websocket clients.
package realtime

// Hub owns the set of connected clients and relays every broadcast to all
// of them.
type Hub struct {
	clients map[*Client]bool

	// Inbound messages from redis to broadcast to all clients.
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	count      chan chan int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.drop(client)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

// Broadcast hands msg to every connected client. It blocks until Run picks it
// up.
func (h *Hub) Broadcast(msg []byte) {
	h.broadcast <- msg
}

// Clients reports how many clients are registered.
func (h *Hub) Clients() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}
