package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeeuneey/GogoTaxi-back/internal/realtime"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// WSHandler upgrades HTTP requests into room realtime subscriptions.
type WSHandler struct {
	hub         *realtime.Hub
	roomService *service.RoomService
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, roomService *service.RoomService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		roomService: roomService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SubscribeRoom handles GET /ws/rooms/:id. The current room snapshot is sent
// immediately so a reconnecting client never waits for the next mutation.
func (h *WSHandler) SubscribeRoom(c *gin.Context) {
	roomID := c.Param("id")
	viewerID := c.Query("user_id")

	snapshot, err := h.roomService.Snapshot(c.Request.Context(), roomID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	detach := h.hub.Subscribe(roomID, conn)
	defer func() {
		detach()
		_ = conn.Close()
	}()

	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	// Drain reads until the client goes away; the data direction is
	// server to client only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
