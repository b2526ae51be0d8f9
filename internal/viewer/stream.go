package viewer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joshharrison/critpath/internal/layout"
	"github.com/joshharrison/critpath/internal/session"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
	streamBuffer    = 16
)

const (
	EventHello   = "hello"
	EventProject = "project"
	EventDeleted = "deleted"
)

// Event is a message pushed to stream subscribers.
type Event struct {
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title,omitempty"`
	View     *layout.View      `json:"view,omitempty"`
	Projects []session.Summary `json:"projects,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type subscriber struct {
	send chan []byte
}

// hub fans events out to websocket subscribers. A subscriber whose buffer
// is full is dropped rather than blocking the broadcaster.
type hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[*subscriber]struct{})}
}

func (h *hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("viewer: marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			log.Printf("viewer: dropping slow stream subscriber")
			delete(h.subscribers, sub)
			close(sub.send)
		}
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := &subscriber{send: make(chan []byte, streamBuffer)}
	hello, err := json.Marshal(Event{Type: EventHello, Projects: s.store.List()})
	if err != nil {
		log.Printf("viewer: marshal hello: %v", err)
		return
	}
	sub.send <- hello
	s.hub.add(sub)
	defer s.hub.remove(sub)

	if err := conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
		log.Printf("viewer: stream set read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	go writeStream(ctx, conn, sub.send)

	// Subscribers only listen; reading drives pong handling and notices
	// when the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeStream(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(streamPingEvery)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-send:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
