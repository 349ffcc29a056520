package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// session wraps a websocket connection with a write lock.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(payload)
}

// Hub is a websocket implementation of Broadcaster. Clients subscribe to a
// room channel and receive every room snapshot published after a mutation.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*session]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*session]struct{}),
	}
}

// Subscribe attaches a connection to a room channel. It returns a detach
// function the caller must invoke when the connection closes.
func (h *Hub) Subscribe(roomID string, conn *websocket.Conn) func() {
	s := &session{conn: conn}

	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*session]struct{})
	}
	h.rooms[roomID][s] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		if sessions, ok := h.rooms[roomID]; ok {
			delete(sessions, s)
			if len(sessions) == 0 {
				delete(h.rooms, roomID)
			}
		}
		h.mu.Unlock()
	}
}

// BroadcastRoom sends the payload to every subscriber of the room. Failed
// connections are dropped from the channel.
func (h *Hub) BroadcastRoom(ctx context.Context, roomID string, payload any) {
	h.mu.RLock()
	sessions := make([]*session, 0, len(h.rooms[roomID]))
	for s := range h.rooms[roomID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		if err := s.send(payload); err != nil {
			h.logger.Warn("realtime send failed, dropping subscriber",
				"room_id", roomID, "error", err)
			h.drop(roomID, s)
		}
	}
}

func (h *Hub) drop(roomID string, s *session) {
	h.mu.Lock()
	if sessions, ok := h.rooms[roomID]; ok {
		delete(sessions, s)
	}
	h.mu.Unlock()
	_ = s.conn.Close()
}
