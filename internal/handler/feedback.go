package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// FeedbackHandler handles HTTP requests for reviews and reports.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// CreateReviewRequest is the HTTP request body for leaving a review.
type CreateReviewRequest struct {
	RoomID  string `json:"room_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ReviewResponse is the HTTP response for one review.
type ReviewResponse struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		RoomID:     r.RoomID,
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// CreateReportRequest is the HTTP request body for filing a report.
type CreateReportRequest struct {
	RoomID             string `json:"room_id"`
	ReportedSeatNumber int    `json:"reported_seat_number"`
	Message            string `json:"message"`
}

// ReportResponse is the HTTP response for one report.
type ReportResponse struct {
	ID                 string    `json:"id"`
	RoomID             string    `json:"room_id"`
	ReporterID         string    `json:"reporter_id"`
	ReportedSeatNumber int       `json:"reported_seat_number"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"created_at"`
}

func toReportResponse(r *domain.Report) ReportResponse {
	return ReportResponse{
		ID:                 r.ID,
		RoomID:             r.RoomID,
		ReporterID:         r.ReporterID,
		ReportedSeatNumber: r.ReportedSeatNumber,
		Message:            r.Message,
		CreatedAt:          r.CreatedAt,
	}
}

// CreateReview handles POST /v1/reviews
func (h *FeedbackHandler) CreateReview(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.RoomID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room_id is required"})
		return
	}
	if len(req.Comment) > 2000 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "comment too long"})
		return
	}

	review, err := h.feedbackService.CreateReview(c.Request.Context(), req.RoomID, actor, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// ListRoomReviews handles GET /v1/rooms/:id/reviews
func (h *FeedbackHandler) ListRoomReviews(c *gin.Context) {
	reviews, err := h.feedbackService.ListRoomReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toReviewResponse(r))
	}
	respondJSON(c, http.StatusOK, gin.H{"reviews": items})
}

// ListMyReviews handles GET /v1/reviews/mine
func (h *FeedbackHandler) ListMyReviews(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	reviews, err := h.feedbackService.ListMyReviews(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toReviewResponse(r))
	}
	respondJSON(c, http.StatusOK, gin.H{"reviews": items})
}

// CreateReport handles POST /v1/reports
func (h *FeedbackHandler) CreateReport(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.RoomID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room_id is required"})
		return
	}
	if len(req.Message) < 5 || len(req.Message) > 5000 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message must be between 5 and 5000 characters"})
		return
	}

	report, err := h.feedbackService.CreateReport(c.Request.Context(), req.RoomID, actor, req.ReportedSeatNumber, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toReportResponse(report))
}

// ListRoomReports handles GET /v1/rooms/:id/reports
func (h *FeedbackHandler) ListRoomReports(c *gin.Context) {
	reports, err := h.feedbackService.ListRoomReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toReportResponse(r))
	}
	respondJSON(c, http.StatusOK, gin.H{"reports": items})
}

// ListMyReports handles GET /v1/reports/mine
func (h *FeedbackHandler) ListMyReports(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		return
	}

	reports, err := h.feedbackService.ListMyReports(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toReportResponse(r))
	}
	respondJSON(c, http.StatusOK, gin.H{"reports": items})
}
