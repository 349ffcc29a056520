package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// FeedbackService handles post-ride reviews and in-ride moderation reports.
// Both are open to the host and to seat holders; once the room settles and
// seats are released, membership is proven by the ride history instead.
type FeedbackService struct {
	roomRepo        repository.RoomRepository
	participantRepo repository.ParticipantRepository
	historyRepo     repository.HistoryRepository
	reviewRepo      repository.ReviewRepository
	reportRepo      repository.ReportRepository
	logger          *slog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	roomRepo repository.RoomRepository,
	participantRepo repository.ParticipantRepository,
	historyRepo repository.HistoryRepository,
	reviewRepo repository.ReviewRepository,
	reportRepo repository.ReportRepository,
	logger *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		historyRepo:     historyRepo,
		reviewRepo:      reviewRepo,
		reportRepo:      reportRepo,
		logger:          logger,
	}
}

// CreateReview records a rating for the room's ride.
func (s *FeedbackService) CreateReview(ctx context.Context, roomID, reviewerID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if err := s.assertMember(ctx, roomID, reviewerID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListRoomReviews returns a room's reviews, newest first.
func (s *FeedbackService) ListRoomReviews(ctx context.Context, roomID string) ([]*domain.Review, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.reviewRepo.ListByRoom(ctx, roomID)
}

// ListMyReviews returns the reviews a user wrote, newest first.
func (s *FeedbackService) ListMyReviews(ctx context.Context, reviewerID string) ([]*domain.Review, error) {
	return s.reviewRepo.ListByReviewer(ctx, reviewerID)
}

// CreateReport files a moderation report against a seat in the room.
func (s *FeedbackService) CreateReport(ctx context.Context, roomID, reporterID string, seatNumber int, message string) (*domain.Report, error) {
	if seatNumber < 1 {
		return nil, ErrSeatOutOfRange
	}
	if err := s.assertMember(ctx, roomID, reporterID); err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:                 uuid.New().String(),
		RoomID:             roomID,
		ReporterID:         reporterID,
		ReportedSeatNumber: seatNumber,
		Message:            message,
		CreatedAt:          time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListRoomReports returns a room's reports, newest first.
func (s *FeedbackService) ListRoomReports(ctx context.Context, roomID string) ([]*domain.Report, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.reportRepo.ListByRoom(ctx, roomID)
}

// ListMyReports returns the reports a user filed, newest first.
func (s *FeedbackService) ListMyReports(ctx context.Context, reporterID string) ([]*domain.Report, error) {
	return s.reportRepo.ListByReporter(ctx, reporterID)
}

// assertMember verifies the user hosted the room, holds a seat in it, or
// rode in it before the seats were released.
func (s *FeedbackService) assertMember(ctx context.Context, roomID, userID string) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if room.CreatorID == userID {
		return nil
	}

	if _, err := s.participantRepo.GetByRoomAndUser(ctx, roomID, userID); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	histories, err := s.historyRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, h := range histories {
		if h.RoomID == roomID {
			return nil
		}
	}
	return ErrNotParticipant
}
