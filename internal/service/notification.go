package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/notify"
)

// EventPublisher is the delivery pipeline notifications are handed to.
// Publishing is best effort; the core never blocks on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event notify.Event) error
}

// NotificationService builds and hands off user notifications. A nil
// publisher degrades to log-only delivery.
type NotificationService struct {
	publisher EventPublisher
	logger    *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(publisher EventPublisher, logger *slog.Logger) *NotificationService {
	return &NotificationService{publisher: publisher, logger: logger}
}

// NotifyDepositHeld tells a member their estimated-fare share was debited.
func (s *NotificationService) NotifyDepositHeld(ctx context.Context, room *domain.Room, userID string, amount int64) {
	s.send(ctx, notify.Event{
		UserID:   userID,
		Title:    fmt.Sprintf("Deposit held for %q", room.Title),
		Body:     fmt.Sprintf("%d KRW was held as your estimated fare share.", amount),
		Metadata: map[string]string{"room_id": room.ID},
	})
}

// NotifySettled tells a member the room's fare settlement finished.
func (s *NotificationService) NotifySettled(ctx context.Context, room *domain.Room, userID string, actualFare, delta int64) {
	var summary string
	switch {
	case delta > 0:
		summary = fmt.Sprintf("The fare ran %d KRW over the estimate; the difference was collected.", delta)
	case delta < 0:
		summary = fmt.Sprintf("The fare came in %d KRW under the estimate; the difference was refunded.", -delta)
	default:
		summary = "The fare matched the estimate; no further money moved."
	}
	s.send(ctx, notify.Event{
		UserID:   userID,
		Title:    fmt.Sprintf("Settlement complete for %q", room.Title),
		Body:     fmt.Sprintf("Settled at %d KRW. %s", actualFare, summary),
		Metadata: map[string]string{"room_id": room.ID},
	})
}

// NotifyStageChanged tells participants the dispatch progressed.
func (s *NotificationService) NotifyStageChanged(ctx context.Context, room *domain.Room, userID string, stage domain.RideStage) {
	s.send(ctx, notify.Event{
		UserID:   userID,
		Title:    fmt.Sprintf("Ride update for %q", room.Title),
		Body:     fmt.Sprintf("Dispatch stage is now %s.", stage),
		Metadata: map[string]string{"room_id": room.ID, "stage": string(stage)},
	})
}

// NotifyRoomDeleted tells a user the room they watched is gone.
func (s *NotificationService) NotifyRoomDeleted(ctx context.Context, roomID, title, userID string) {
	s.send(ctx, notify.Event{
		UserID:   userID,
		Title:    fmt.Sprintf("Room %q was disbanded", title),
		Body:     "The host left and the room no longer exists.",
		Metadata: map[string]string{"room_id": roomID},
	})
}

// send hands the event to the pipeline. Errors are logged and swallowed:
// notifications carry no delivery guarantee.
func (s *NotificationService) send(ctx context.Context, event notify.Event) {
	event.CreatedAt = time.Now()

	s.logger.Info("notification",
		"user_id", event.UserID, "title", event.Title, "body", event.Body)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("notification publish failed", "user_id", event.UserID, "error", err)
	}
}
