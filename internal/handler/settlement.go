package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// SettlementHandler handles HTTP requests for room settlement.
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// FinalizeRequest is the HTTP request body for finalizing a room.
type FinalizeRequest struct {
	ActualFare int64 `json:"actual_fare"`
}

// NoShowRequest is the HTTP request body for flagging a no-show.
type NoShowRequest struct {
	UserID string `json:"user_id"`
	NoShow bool   `json:"no_show"`
}

// SettlementResponse is one member's money position in a room.
type SettlementResponse struct {
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	Deposit      int64     `json:"deposit"`
	ExtraCollect int64     `json:"extra_collect"`
	Refund       int64     `json:"refund"`
	NetAmount    int64     `json:"net_amount"`
	NoShow       bool      `json:"no_show"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toSettlementResponses(records []*domain.RoomSettlement) []SettlementResponse {
	items := make([]SettlementResponse, 0, len(records))
	for _, r := range records {
		items = append(items, SettlementResponse{
			UserID:       r.UserID,
			Role:         string(r.Role),
			Deposit:      r.Deposit,
			ExtraCollect: r.ExtraCollect,
			Refund:       r.Refund,
			NetAmount:    r.NetAmount,
			NoShow:       r.NoShow,
			Status:       string(r.Status),
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return items
}

// HistoryResponse is one settled ride in a user's history.
type HistoryResponse struct {
	RoomID       string    `json:"room_id"`
	Role         string    `json:"role"`
	Deposit      int64     `json:"deposit"`
	ExtraCollect int64     `json:"extra_collect"`
	Refund       int64     `json:"refund"`
	NetAmount    int64     `json:"net_amount"`
	ActualFare   int64     `json:"actual_fare"`
	SettledAt    time.Time `json:"settled_at"`
}

// HoldDeposit handles POST /v1/rooms/:id/settlement/hold
func (h *SettlementHandler) HoldDeposit(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	records, err := h.settlementService.HoldEstimatedFare(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"settlements": toSettlementResponses(records)})
}

// Finalize handles POST /v1/rooms/:id/settlement/finalize
func (h *SettlementHandler) Finalize(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	records, err := h.settlementService.FinalizeRoomSettlement(c.Request.Context(), c.Param("id"), actor, req.ActualFare)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"settlements": toSettlementResponses(records)})
}

// MarkNoShow handles POST /v1/rooms/:id/settlement/no-show
func (h *SettlementHandler) MarkNoShow(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req NoShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	room, err := h.settlementService.MarkNoShow(c.Request.Context(), c.Param("id"), actor, req.UserID, req.NoShow)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"room_id": room.ID, "no_show_user_ids": room.NoShowUserIDs})
}

// ListSettlements handles GET /v1/rooms/:id/settlement
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	records, err := h.settlementService.ListSettlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"settlements": toSettlementResponses(records)})
}

// ListHistory handles GET /v1/history
func (h *SettlementHandler) ListHistory(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	histories, err := h.settlementService.ListHistory(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]HistoryResponse, 0, len(histories))
	for _, rh := range histories {
		items = append(items, HistoryResponse{
			RoomID:       rh.RoomID,
			Role:         string(rh.Role),
			Deposit:      rh.Deposit,
			ExtraCollect: rh.ExtraCollect,
			Refund:       rh.Refund,
			NetAmount:    rh.NetAmount,
			ActualFare:   rh.ActualFare,
			SettledAt:    rh.SettledAt,
		})
	}
	respondJSON(c, http.StatusOK, gin.H{"history": items})
}
