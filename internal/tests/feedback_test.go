package tests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

type feedbackFixture struct {
	rooms        *MockRoomRepository
	participants *MockParticipantRepository
	histories    *MockHistoryRepository
	reviews      *MockReviewRepository
	reports      *MockReportRepository
	svc          *service.FeedbackService
}

func newFeedbackFixture() *feedbackFixture {
	f := &feedbackFixture{
		rooms:        NewMockRoomRepository(),
		participants: NewMockParticipantRepository(),
		histories:    NewMockHistoryRepository(),
		reviews:      NewMockReviewRepository(),
		reports:      NewMockReportRepository(),
	}
	f.svc = service.NewFeedbackService(
		f.rooms, f.participants, f.histories, f.reviews, f.reports,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *feedbackFixture) seat(roomID, userID string, seat int) {
	_ = f.participants.Create(context.Background(), &domain.RoomParticipant{
		ID: roomID + ":" + userID, RoomID: roomID, UserID: userID, SeatNumber: seat,
	})
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture()
	f.rooms.AddRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.seat("r1", "host", 1)
	f.seat("r1", "g1", 2)

	review, err := f.svc.CreateReview(ctx, "r1", "g1", 5, "smooth ride")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if review.RoomID != "r1" || review.ReviewerID != "g1" || review.Rating != 5 {
		t.Errorf("review = %+v", review)
	}

	listed, err := f.svc.ListRoomReviews(ctx, "r1")
	if err != nil {
		t.Fatalf("ListRoomReviews: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("got %d reviews, want 1", len(listed))
	}
}

func TestCreateReview_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture()
	f.rooms.AddRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.seat("r1", "g1", 2)

	if _, err := f.svc.CreateReview(ctx, "r1", "g1", 0, ""); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("rating 0: err = %v, want ErrInvalidRating", err)
	}
	if _, err := f.svc.CreateReview(ctx, "r1", "g1", 6, ""); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("rating 6: err = %v, want ErrInvalidRating", err)
	}
	if _, err := f.svc.CreateReview(ctx, "r1", "stranger", 4, ""); !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("stranger: err = %v, want ErrNotParticipant", err)
	}
	if _, err := f.svc.CreateReview(ctx, "missing", "g1", 4, ""); !errors.Is(err, service.ErrRoomNotFound) {
		t.Errorf("missing room: err = %v, want ErrRoomNotFound", err)
	}
}

// Seats are released once a room settles, so the membership check falls back
// to the ride history.
func TestCreateReview_AfterSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture()
	f.rooms.AddRoom(&domain.Room{
		ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusClosed,
		SettlementStatus: domain.SettlementStatusSettled,
	})
	_ = f.histories.Upsert(ctx, &domain.RideHistory{
		ID: "h1", RoomID: "r1", UserID: "g1",
		Role: domain.SettlementRoleGuest, SettledAt: time.Now(),
	})

	if _, err := f.svc.CreateReview(ctx, "r1", "g1", 4, "late pickup"); err != nil {
		t.Fatalf("review after settlement: %v", err)
	}
	if _, err := f.svc.CreateReview(ctx, "r1", "stranger", 4, ""); !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("stranger: err = %v, want ErrNotParticipant", err)
	}
}

func TestCreateReport(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture()
	f.rooms.AddRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.seat("r1", "g1", 2)

	report, err := f.svc.CreateReport(ctx, "r1", "g1", 3, "seat 3 never showed and would not answer")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.ReportedSeatNumber != 3 || report.ReporterID != "g1" {
		t.Errorf("report = %+v", report)
	}

	if _, err := f.svc.CreateReport(ctx, "r1", "g1", 0, "bad seat"); !errors.Is(err, service.ErrSeatOutOfRange) {
		t.Errorf("seat 0: err = %v, want ErrSeatOutOfRange", err)
	}
	if _, err := f.svc.CreateReport(ctx, "r1", "stranger", 2, "not my room"); !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("stranger: err = %v, want ErrNotParticipant", err)
	}

	mine, err := f.svc.ListMyReports(ctx, "g1")
	if err != nil {
		t.Fatalf("ListMyReports: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("got %d reports, want 1", len(mine))
	}
}
