package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	UserID string `json:"user_id,omitempty"` // set when the failure is tied to one member
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)

	resp := ErrorResponse{Error: err.Error()}
	var memberErr *service.MemberDebitError
	if errors.As(err, &memberErr) {
		resp.UserID = memberErr.UserID
	}

	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidTxKind),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrSeatOutOfRange),
		errors.Is(err, service.ErrEstimatedFareMissing):
		return http.StatusBadRequest

	// The wallet cannot cover the debit
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusPaymentRequired

	// Host-only or otherwise not permitted
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrHostCannotLeave):
		return http.StatusForbidden

	// State conflicts
	case errors.Is(err, service.ErrRoomNotOpen),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrSeatTaken),
		errors.Is(err, service.ErrSeatsLocked),
		errors.Is(err, service.ErrAlreadyClosed),
		errors.Is(err, service.ErrDepositNotCollected),
		errors.Is(err, service.ErrInvalidStageTransition),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// actorID resolves the calling user from the X-User-ID header. An empty
// return means the caller was already answered with 400.
func actorID(c *gin.Context) string {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
	}
	return id
}
