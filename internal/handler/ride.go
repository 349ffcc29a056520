package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// RideHandler handles HTTP requests for a room's dispatch state.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRideRequest is the HTTP request body for starting dispatch. Absent
// coordinates fall back to the room's route.
type RequestRideRequest struct {
	PickupLabel  string  `json:"pickup_label,omitempty"`
	PickupLat    float64 `json:"pickup_lat,omitempty"`
	PickupLng    float64 `json:"pickup_lng,omitempty"`
	DropoffLabel string  `json:"dropoff_label,omitempty"`
	DropoffLat   float64 `json:"dropoff_lat,omitempty"`
	DropoffLng   float64 `json:"dropoff_lng,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// UpdateStageRequest is the HTTP request body for a stage transition.
type UpdateStageRequest struct {
	Stage      string  `json:"stage"`
	DriverName *string `json:"driver_name,omitempty"`
	CarModel   *string `json:"car_model,omitempty"`
	CarNumber  *string `json:"car_number,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// PromoteDriverRequest is the HTTP request body for the driver-assignment
// shortcut.
type PromoteDriverRequest struct {
	DriverName *string `json:"driver_name,omitempty"`
	CarModel   *string `json:"car_model,omitempty"`
	CarNumber  *string `json:"car_number,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// RideStateResponse is the HTTP response for dispatch state.
type RideStateResponse struct {
	RoomID       string    `json:"room_id"`
	Stage        string    `json:"stage"`
	DeeplinkURL  string    `json:"deeplink_url,omitempty"`
	PickupLabel  string    `json:"pickup_label,omitempty"`
	PickupLat    float64   `json:"pickup_lat,omitempty"`
	PickupLng    float64   `json:"pickup_lng,omitempty"`
	DropoffLabel string    `json:"dropoff_label,omitempty"`
	DropoffLat   float64   `json:"dropoff_lat,omitempty"`
	DropoffLng   float64   `json:"dropoff_lng,omitempty"`
	DriverName   string    `json:"driver_name,omitempty"`
	CarModel     string    `json:"car_model,omitempty"`
	CarNumber    string    `json:"car_number,omitempty"`
	Note         string    `json:"note,omitempty"`
	UpdatedByID  string    `json:"updated_by_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func toRideStateResponse(state *domain.RoomRideState) RideStateResponse {
	return RideStateResponse{
		RoomID:       state.RoomID,
		Stage:        string(state.Stage),
		DeeplinkURL:  state.DeeplinkURL,
		PickupLabel:  state.PickupLabel,
		PickupLat:    state.PickupLat,
		PickupLng:    state.PickupLng,
		DropoffLabel: state.DropoffLabel,
		DropoffLat:   state.DropoffLat,
		DropoffLng:   state.DropoffLng,
		DriverName:   state.DriverName,
		CarModel:     state.CarModel,
		CarNumber:    state.CarNumber,
		Note:         state.Note,
		UpdatedByID:  state.UpdatedByID,
		UpdatedAt:    state.UpdatedAt,
	}
}

// GetRideState handles GET /v1/rooms/:id/ride
func (h *RideHandler) GetRideState(c *gin.Context) {
	state, err := h.rideService.GetRideState(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideStateResponse(state))
}

// RequestRide handles POST /v1/rooms/:id/ride/request
func (h *RideHandler) RequestRide(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req RequestRideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	state, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideRequest{
		RoomID:       c.Param("id"),
		ActorID:      actor,
		PickupLabel:  req.PickupLabel,
		PickupLat:    req.PickupLat,
		PickupLng:    req.PickupLng,
		DropoffLabel: req.DropoffLabel,
		DropoffLat:   req.DropoffLat,
		DropoffLng:   req.DropoffLng,
		Note:         req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideStateResponse(state))
}

// UpdateStage handles POST /v1/rooms/:id/ride/stage
func (h *RideHandler) UpdateStage(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if !domain.ValidRideStage(req.Stage) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown stage"})
		return
	}

	state, err := h.rideService.UpdateStage(c.Request.Context(), service.StageUpdateRequest{
		RoomID:     c.Param("id"),
		ActorID:    actor,
		Stage:      domain.RideStage(req.Stage),
		DriverName: req.DriverName,
		CarModel:   req.CarModel,
		CarNumber:  req.CarNumber,
		Note:       req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideStateResponse(state))
}

// PromoteDriverAssigned handles POST /v1/rooms/:id/ride/driver
func (h *RideHandler) PromoteDriverAssigned(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req PromoteDriverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	state, err := h.rideService.PromoteDriverAssigned(c.Request.Context(), service.StageUpdateRequest{
		RoomID:     c.Param("id"),
		ActorID:    actor,
		DriverName: req.DriverName,
		CarModel:   req.CarModel,
		CarNumber:  req.CarNumber,
		Note:       req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideStateResponse(state))
}
