package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// WalletHandler handles HTTP requests for the wallet ledger.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// TopUpRequest is the HTTP request body for a manual wallet top-up.
type TopUpRequest struct {
	Amount         int64  `json:"amount"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// TransactionResponse is the HTTP response for one ledger entry.
type TransactionResponse struct {
	ID        string            `json:"id"`
	RoomID    string            `json:"room_id,omitempty"`
	Kind      string            `json:"kind"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toTransactionResponse(tx *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID,
		RoomID:    tx.RoomID,
		Kind:      string(tx.Kind),
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Status:    string(tx.Status),
		Metadata:  tx.Metadata,
		CreatedAt: tx.CreatedAt,
	}
}

// GetBalance handles GET /v1/wallet/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"user_id": actor, "balance": balance})
}

// TopUp handles POST /v1/wallet/topup
func (h *WalletHandler) TopUp(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Amount <= 0 {
		respondError(c, service.ErrInvalidAmount)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = "top_up:" + uuid.New().String()
	}

	tx, err := h.walletService.RecordTransaction(c.Request.Context(), service.RecordTransactionRequest{
		UserID:         actor,
		Kind:           domain.WalletTxTopUp,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toTransactionResponse(tx))
}

// ChargeRequest is the HTTP request body for a generic wallet charge. The
// kind decides the direction: credit kinds add to the wallet, debit kinds
// subtract.
type ChargeRequest struct {
	RoomID         string `json:"room_id,omitempty"`
	Kind           string `json:"kind"`
	Amount         int64  `json:"amount"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Charge handles POST /v1/wallet/charge
func (h *WalletHandler) Charge(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tx, err := h.walletService.Charge(c.Request.Context(), service.ChargeRequest{
		UserID:         actor,
		RoomID:         req.RoomID,
		Kind:           domain.WalletTxKind(req.Kind),
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toTransactionResponse(tx))
}

// ListTransactions handles GET /v1/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	txs, err := h.walletService.ListTransactions(c.Request.Context(), actor, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, toTransactionResponse(tx))
	}
	respondJSON(c, http.StatusOK, gin.H{"transactions": items})
}

// AuditBalance handles GET /v1/wallet/audit
func (h *WalletHandler) AuditBalance(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	consistent, err := h.walletService.AuditBalance(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"user_id": actor, "consistent": consistent})
}
