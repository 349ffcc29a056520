package repository

import (
	"context"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// ReviewRepository defines the persistence operations for ride reviews.
type ReviewRepository interface {
	// Create persists a new review.
	Create(ctx context.Context, review *domain.Review) error

	// ListByRoom retrieves a room's reviews, newest first.
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Review, error)

	// ListByReviewer retrieves the reviews a user wrote, newest first.
	ListByReviewer(ctx context.Context, reviewerID string) ([]*domain.Review, error)
}

// ReportRepository defines the persistence operations for moderation reports.
type ReportRepository interface {
	// Create persists a new report.
	Create(ctx context.Context, report *domain.Report) error

	// ListByRoom retrieves a room's reports, newest first.
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Report, error)

	// ListByReporter retrieves the reports a user filed, newest first.
	ListByReporter(ctx context.Context, reporterID string) ([]*domain.Report, error)
}
