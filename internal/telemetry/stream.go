package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orrery/core/internal/sim"
)

// Event is one message pushed down the world stream.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// WorldSnapshot is the Payload of a "tick" event: enough of World's state
// for a client to render bodies and crafts. It carries no transfer-search
// state.
type WorldSnapshot struct {
	Bodies  []sim.Body  `json:"bodies"`
	Crafts  []sim.Craft `json:"crafts"`
	Shifts  int         `json:"shifts"`
}

// Broadcaster manages WebSocket connections and fans out world-stream
// events to all of them. Mirrors this codebase's realtime.Broadcaster:
// client register/unregister and outbound events are all serialized
// through one owning goroutine (Start), so client-set mutation is never
// raced against a broadcast in flight.
type Broadcaster struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan Event
	mu         sync.RWMutex
	done       chan struct{}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewBroadcaster creates a new event broadcaster. Call Start once, from its
// own goroutine, before any client connects.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Start runs the broadcaster's event loop until Stop is called.
func (b *Broadcaster) Start() {
	for {
		select {
		case conn := <-b.register:
			b.mu.Lock()
			b.clients[conn] = true
			n := len(b.clients)
			b.mu.Unlock()
			GetMetrics().WebSocketClients.Set(float64(n))

		case conn := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[conn]; ok {
				delete(b.clients, conn)
				conn.Close()
			}
			n := len(b.clients)
			b.mu.Unlock()
			GetMetrics().WebSocketClients.Set(float64(n))

		case event := <-b.broadcast:
			b.mu.RLock()
			for conn := range b.clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("world stream: write error, dropping client: %v", err)
					go func(c *websocket.Conn) { b.unregister <- c }(conn)
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			return
		}
	}
}

// Broadcast publishes an event of the given type to every connected client.
// Non-blocking: an event is dropped (and logged) rather than stalling the
// caller if the outbound buffer is full.
func (b *Broadcaster) Broadcast(eventType string, payload interface{}) {
	event := Event{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload}
	select {
	case b.broadcast <- event:
	default:
		log.Printf("world stream: broadcast buffer full, dropping event: %s", eventType)
	}
}

// Stop shuts the broadcaster down and closes every connected client.
func (b *Broadcaster) Stop() {
	close(b.done)
	b.mu.Lock()
	for conn := range b.clients {
		conn.Close()
		delete(b.clients, conn)
	}
	b.mu.Unlock()
}

// HandleWebSocket upgrades r into a world-stream client of broadcaster.
func HandleWebSocket(w http.ResponseWriter, r *http.Request, broadcaster *Broadcaster) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("world stream: upgrade error: %v", err)
		return
	}

	broadcaster.register <- conn

	go func() {
		defer func() { broadcaster.unregister <- conn }()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("world stream: read error: %v", err)
				}
				break
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(54 * time.Second)
		defer ticker.Stop()
		defer conn.Close()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-broadcaster.done:
				return
			}
		}
	}()
}
