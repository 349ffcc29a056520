package postgres

import (
	"context"
	"database/sql"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// ReviewRepository is a PostgreSQL implementation of
// repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, room_id, reviewer_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		review.ID,
		review.RoomID,
		review.ReviewerID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	return err
}

// ListByRoom retrieves a room's reviews, newest first.
func (r *ReviewRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Review, error) {
	query := `
		SELECT id, room_id, reviewer_id, rating, comment, created_at
		FROM reviews WHERE room_id = $1
		ORDER BY created_at DESC
	`
	return r.scanReviews(ctx, query, roomID)
}

// ListByReviewer retrieves the reviews a user wrote, newest first.
func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewerID string) ([]*domain.Review, error) {
	query := `
		SELECT id, room_id, reviewer_id, rating, comment, created_at
		FROM reviews WHERE reviewer_id = $1
		ORDER BY created_at DESC
	`
	return r.scanReviews(ctx, query, reviewerID)
}

func (r *ReviewRepository) scanReviews(ctx context.Context, query string, arg any) ([]*domain.Review, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var review domain.Review
		err := rows.Scan(
			&review.ID, &review.RoomID, &review.ReviewerID,
			&review.Rating, &review.Comment, &review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}

// ReportRepository is a PostgreSQL implementation of
// repository.ReportRepository.
type ReportRepository struct {
	q Querier
}

// NewReportRepository creates a new PostgreSQL report repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{q: db}
}

// Create persists a new report.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (id, room_id, reporter_id, reported_seat_number, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		report.ID,
		report.RoomID,
		report.ReporterID,
		report.ReportedSeatNumber,
		report.Message,
		report.CreatedAt,
	)

	return err
}

// ListByRoom retrieves a room's reports, newest first.
func (r *ReportRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Report, error) {
	query := `
		SELECT id, room_id, reporter_id, reported_seat_number, message, created_at
		FROM reports WHERE room_id = $1
		ORDER BY created_at DESC
	`
	return r.scanReports(ctx, query, roomID)
}

// ListByReporter retrieves the reports a user filed, newest first.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID string) ([]*domain.Report, error) {
	query := `
		SELECT id, room_id, reporter_id, reported_seat_number, message, created_at
		FROM reports WHERE reporter_id = $1
		ORDER BY created_at DESC
	`
	return r.scanReports(ctx, query, reporterID)
}

func (r *ReportRepository) scanReports(ctx context.Context, query string, arg any) ([]*domain.Report, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		var report domain.Report
		err := rows.Scan(
			&report.ID, &report.RoomID, &report.ReporterID,
			&report.ReportedSeatNumber, &report.Message, &report.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
