package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// RoomHandler handles HTTP requests for rooms.
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoomRequest is the HTTP request body for creating a room.
type CreateRoomRequest struct {
	Title          string    `json:"title"`
	DepartureLabel string    `json:"departure_label"`
	DepartureLat   float64   `json:"departure_lat"`
	DepartureLng   float64   `json:"departure_lng"`
	ArrivalLabel   string    `json:"arrival_label"`
	ArrivalLat     float64   `json:"arrival_lat"`
	ArrivalLng     float64   `json:"arrival_lng"`
	DepartureTime  time.Time `json:"departure_time"`
	Capacity       int       `json:"capacity"`
	Priority       string    `json:"priority,omitempty"` // time, fare
	EstimatedFare  *int64    `json:"estimated_fare,omitempty"`
}

// UpdateRoomRequest is the HTTP request body for host room edits. Absent
// fields keep their previous value.
type UpdateRoomRequest struct {
	Title          *string    `json:"title,omitempty"`
	DepartureLabel *string    `json:"departure_label,omitempty"`
	DepartureLat   *float64   `json:"departure_lat,omitempty"`
	DepartureLng   *float64   `json:"departure_lng,omitempty"`
	ArrivalLabel   *string    `json:"arrival_label,omitempty"`
	ArrivalLat     *float64   `json:"arrival_lat,omitempty"`
	ArrivalLng     *float64   `json:"arrival_lng,omitempty"`
	DepartureTime  *time.Time `json:"departure_time,omitempty"`
	Capacity       *int       `json:"capacity,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	EstimatedFare  *int64     `json:"estimated_fare,omitempty"`
}

// JoinRoomRequest is the HTTP request body for taking a seat.
type JoinRoomRequest struct {
	SeatNumber int `json:"seat_number,omitempty"` // 0 assigns the lowest free seat
}

// ParticipantResponse is one seat in a room response.
type ParticipantResponse struct {
	UserID     string    `json:"user_id"`
	SeatNumber int       `json:"seat_number"`
	IsHost     bool      `json:"is_host"`
	JoinedAt   time.Time `json:"joined_at"`
}

// RoomResponse is the HTTP response for room data.
type RoomResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	CreatorID        string                `json:"creator_id"`
	DepartureLabel   string                `json:"departure_label"`
	DepartureLat     float64               `json:"departure_lat"`
	DepartureLng     float64               `json:"departure_lng"`
	ArrivalLabel     string                `json:"arrival_label"`
	ArrivalLat       float64               `json:"arrival_lat"`
	ArrivalLng       float64               `json:"arrival_lng"`
	DepartureTime    time.Time             `json:"departure_time"`
	Capacity         int                   `json:"capacity"`
	Priority         string                `json:"priority"`
	Status           string                `json:"status"`
	EstimatedFare    *int64                `json:"estimated_fare,omitempty"`
	ActualFare       *int64                `json:"actual_fare,omitempty"`
	SettlementStatus string                `json:"settlement_status"`
	NoShowUserIDs    []string              `json:"no_show_user_ids,omitempty"`
	SeatsFilled      int                   `json:"seats_filled"`
	SeatsAvailable   int                   `json:"seats_available"`
	RideStage        string                `json:"ride_stage"`
	MySeatNumber     int                   `json:"my_seat_number,omitempty"`
	Participants     []ParticipantResponse `json:"participants,omitempty"`
}

func toRoomResponse(snapshot *service.RoomSnapshot) RoomResponse {
	room := snapshot.Room
	resp := RoomResponse{
		ID:               room.ID,
		Title:            room.Title,
		CreatorID:        room.CreatorID,
		DepartureLabel:   room.DepartureLabel,
		DepartureLat:     room.DepartureLat,
		DepartureLng:     room.DepartureLng,
		ArrivalLabel:     room.ArrivalLabel,
		ArrivalLat:       room.ArrivalLat,
		ArrivalLng:       room.ArrivalLng,
		DepartureTime:    room.DepartureTime,
		Capacity:         room.Capacity,
		Priority:         string(room.Priority),
		Status:           string(room.Status),
		EstimatedFare:    room.EstimatedFare,
		ActualFare:       room.ActualFare,
		SettlementStatus: string(room.SettlementStatus),
		NoShowUserIDs:    room.NoShowUserIDs,
		SeatsFilled:      snapshot.SeatsFilled,
		SeatsAvailable:   snapshot.SeatsAvailable,
		RideStage:        string(snapshot.RideStage),
		MySeatNumber:     snapshot.MySeatNumber,
	}
	for _, p := range snapshot.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			UserID:     p.UserID,
			SeatNumber: p.SeatNumber,
			IsHost:     p.UserID == room.CreatorID,
			JoinedAt:   p.JoinedAt,
		})
	}
	return resp
}

// RoomListItem is one row in a room listing.
type RoomListItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	CreatorID      string    `json:"creator_id"`
	DepartureLabel string    `json:"departure_label"`
	ArrivalLabel   string    `json:"arrival_label"`
	DepartureTime  time.Time `json:"departure_time"`
	Capacity       int       `json:"capacity"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	EstimatedFare  *int64    `json:"estimated_fare,omitempty"`
}

func toRoomListItems(rooms []*domain.Room) []RoomListItem {
	items := make([]RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, RoomListItem{
			ID:             room.ID,
			Title:          room.Title,
			CreatorID:      room.CreatorID,
			DepartureLabel: room.DepartureLabel,
			ArrivalLabel:   room.ArrivalLabel,
			DepartureTime:  room.DepartureTime,
			Capacity:       room.Capacity,
			Priority:       string(room.Priority),
			Status:         string(room.Status),
			EstimatedFare:  room.EstimatedFare,
		})
	}
	return items
}

// CreateRoom handles POST /v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Title == "" || req.DepartureTime.IsZero() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title and departure_time are required"})
		return
	}

	snapshot, err := h.roomService.CreateRoom(c.Request.Context(), service.CreateRoomRequest{
		CreatorID:      actor,
		Title:          req.Title,
		DepartureLabel: req.DepartureLabel,
		DepartureLat:   req.DepartureLat,
		DepartureLng:   req.DepartureLng,
		ArrivalLabel:   req.ArrivalLabel,
		ArrivalLat:     req.ArrivalLat,
		ArrivalLng:     req.ArrivalLng,
		DepartureTime:  req.DepartureTime,
		Capacity:       req.Capacity,
		Priority:       domain.RoomPriority(req.Priority),
		EstimatedFare:  req.EstimatedFare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRoomResponse(snapshot))
}

// GetRoom handles GET /v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	snapshot, err := h.roomService.Snapshot(c.Request.Context(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRoomResponse(snapshot))
}

// ListRooms handles GET /v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	filter := repository.RoomFilter{
		Status:   domain.RoomStatus(c.Query("status")),
		Priority: domain.RoomPriority(c.Query("priority")),
	}

	rooms, err := h.roomService.ListRooms(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rooms": toRoomListItems(rooms)})
}

// ListMyRooms handles GET /v1/rooms/mine
func (h *RoomHandler) ListMyRooms(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	rooms, err := h.roomService.ListMyRooms(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rooms": toRoomListItems(rooms)})
}

// MatchRoomsRequest is the HTTP request body for proximity matching.
type MatchRoomsRequest struct {
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	RadiusKm    float64    `json:"radius_km,omitempty"`
	Earliest    *time.Time `json:"earliest,omitempty"`
	Latest      *time.Time `json:"latest,omitempty"`
	SeatsNeeded int        `json:"seats_needed,omitempty"`
	Priority    string     `json:"priority,omitempty"`
}

// MatchRooms handles POST /v1/rooms/match
func (h *RoomHandler) MatchRooms(c *gin.Context) {
	var req MatchRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	match := service.MatchRoomsRequest{
		Lat:         req.Lat,
		Lng:         req.Lng,
		RadiusKm:    req.RadiusKm,
		SeatsNeeded: req.SeatsNeeded,
		Priority:    domain.RoomPriority(req.Priority),
	}
	if req.Earliest != nil {
		match.Earliest = *req.Earliest
	}
	if req.Latest != nil {
		match.Latest = *req.Latest
	}

	rooms, err := h.roomService.MatchRooms(c.Request.Context(), match)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rooms": toRoomListItems(rooms)})
}

// JoinRoom handles POST /v1/rooms/:id/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req JoinRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	snapshot, err := h.roomService.JoinRoom(c.Request.Context(), service.JoinRoomRequest{
		RoomID:     c.Param("id"),
		UserID:     actor,
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRoomResponse(snapshot))
}

// LeaveRoom handles POST /v1/rooms/:id/leave
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	snapshot, deleted, err := h.roomService.LeaveRoom(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if deleted {
		respondJSON(c, http.StatusOK, gin.H{"room_id": c.Param("id"), "deleted": true})
		return
	}
	respondJSON(c, http.StatusOK, toRoomResponse(snapshot))
}

// CloseRoom handles POST /v1/rooms/:id/close
func (h *RoomHandler) CloseRoom(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	snapshot, err := h.roomService.CloseRoom(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRoomResponse(snapshot))
}

// UpdateRoom handles PATCH /v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	patch := repository.RoomUpdate{
		Title:          req.Title,
		DepartureLabel: req.DepartureLabel,
		DepartureLat:   req.DepartureLat,
		DepartureLng:   req.DepartureLng,
		ArrivalLabel:   req.ArrivalLabel,
		ArrivalLat:     req.ArrivalLat,
		ArrivalLng:     req.ArrivalLng,
		DepartureTime:  req.DepartureTime,
		Capacity:       req.Capacity,
		EstimatedFare:  req.EstimatedFare,
	}
	if req.Priority != nil {
		priority := domain.RoomPriority(*req.Priority)
		patch.Priority = &priority
	}

	snapshot, err := h.roomService.UpdateRoom(c.Request.Context(), c.Param("id"), actor, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRoomResponse(snapshot))
}
