package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/observability"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository/postgres"
)

// SettlementService runs the two money phases of a room: the estimated-fare
// deposit hold and the final settlement against the actual fare.
//
// Each member debit or credit is one atomic ledger write with a key derived
// from (room, phase, user), so a phase that dies halfway can be re-run and
// only the members not yet applied move money again.
type SettlementService struct {
	db              *sql.DB
	roomRepo        repository.RoomRepository
	participantRepo repository.ParticipantRepository
	settlementRepo  repository.SettlementRepository
	historyRepo     repository.HistoryRepository
	wallet          *WalletService
	notifications   *NotificationService
	logger          *slog.Logger
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	db *sql.DB,
	roomRepo repository.RoomRepository,
	participantRepo repository.ParticipantRepository,
	settlementRepo repository.SettlementRepository,
	historyRepo repository.HistoryRepository,
	wallet *WalletService,
	notifications *NotificationService,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		db:              db,
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		settlementRepo:  settlementRepo,
		historyRepo:     historyRepo,
		wallet:          wallet,
		notifications:   notifications,
		logger:          logger,
	}
}

// HoldEstimatedFare debits every guest their estimated per-head share as a
// deposit. Host only. The per-head share divides the estimate across host
// plus guests, rounded up so collection never under-covers; the host's own
// share is reconciled at finalize instead of being held.
func (s *SettlementService) HoldEstimatedFare(ctx context.Context, roomID, actorID string) ([]*domain.RoomSettlement, error) {
	room, participants, err := s.loadRoom(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}
	if room.SettlementStatus == domain.SettlementStatusSettled {
		return nil, ErrAlreadyClosed
	}
	if room.EstimatedFare == nil || *room.EstimatedFare <= 0 {
		return nil, ErrEstimatedFareMissing
	}

	guestCount := len(participants) - 1
	perHead := ceilDiv(*room.EstimatedFare, int64(guestCount+1))

	for _, p := range participants {
		if p.UserID == room.CreatorID {
			continue
		}

		if _, err := s.wallet.EnsureBalanceForDebit(ctx, p.UserID, perHead, roomID, "hold_deposit"); err != nil {
			return nil, &MemberDebitError{UserID: p.UserID, Err: err}
		}
		_, err := s.wallet.RecordTransaction(ctx, RecordTransactionRequest{
			UserID:         p.UserID,
			RoomID:         roomID,
			Kind:           domain.WalletTxHoldDeposit,
			Amount:         -perHead,
			IdempotencyKey: fmt.Sprintf("room:%s:hold:%s", roomID, p.UserID),
		})
		if err != nil {
			return nil, &MemberDebitError{UserID: p.UserID, Err: err}
		}

		if err := s.settlementRepo.Upsert(ctx, &domain.RoomSettlement{
			ID:        uuid.New().String(),
			RoomID:    roomID,
			UserID:    p.UserID,
			Role:      domain.SettlementRoleGuest,
			Deposit:   perHead,
			NetAmount: -perHead,
			Status:    domain.SettlementRecordPending,
			UpdatedAt: time.Now(),
		}); err != nil {
			return nil, err
		}

		s.notifications.NotifyDepositHeld(ctx, room, p.UserID, perHead)
	}

	// The host carries no deposit but still gets a position row so the room's
	// settlement sheet lists every member.
	if err := s.settlementRepo.Upsert(ctx, &domain.RoomSettlement{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    room.CreatorID,
		Role:      domain.SettlementRoleHost,
		Status:    domain.SettlementRecordPending,
		UpdatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	room.SettlementStatus = domain.SettlementStatusDepositCollected
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}

	return s.settlementRepo.ListByRoom(ctx, roomID)
}

// FinalizeRoomSettlement reconciles the room against the actual fare paid by
// the host, closes the room and writes the immutable ride history. Host only.
//
// When the actual fare runs over the estimate the shortfall is split across
// the guests not flagged no-show, rounded up so collection never falls
// short. When it runs under, the surplus is split across every guest,
// rounded down so refunds never exceed the surplus. The host is credited
// everything the guests paid in.
func (s *SettlementService) FinalizeRoomSettlement(ctx context.Context, roomID, actorID string, actualFare int64) ([]*domain.RoomSettlement, error) {
	started := time.Now()

	if actualFare <= 0 {
		return nil, ErrInvalidAmount
	}

	room, _, err := s.loadRoom(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}
	if room.SettlementStatus == domain.SettlementStatusSettled {
		return nil, ErrAlreadyClosed
	}
	if room.SettlementStatus != domain.SettlementStatusDepositCollected {
		return nil, ErrDepositNotCollected
	}

	// The sheet derives from the positions recorded at hold time, not from
	// the current seat list: the hold rows are where the money actually is.
	held, err := s.settlementRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	fareDelta := actualFare - *room.EstimatedFare
	settlements := computeFinalSheet(room, held, actualFare)

	for _, record := range settlements {
		if record.Role != domain.SettlementRoleGuest {
			continue
		}

		if record.ExtraCollect > 0 {
			if _, err := s.wallet.EnsureBalanceForDebit(ctx, record.UserID, record.ExtraCollect, roomID, "extra_collect"); err != nil {
				return nil, &MemberDebitError{UserID: record.UserID, Err: err}
			}
			if _, err := s.wallet.RecordTransaction(ctx, RecordTransactionRequest{
				UserID:         record.UserID,
				RoomID:         roomID,
				Kind:           domain.WalletTxExtraCollect,
				Amount:         -record.ExtraCollect,
				IdempotencyKey: fmt.Sprintf("room:%s:extra:%s", roomID, record.UserID),
			}); err != nil {
				return nil, &MemberDebitError{UserID: record.UserID, Err: err}
			}
		}
		if record.Refund > 0 {
			if _, err := s.wallet.RecordTransaction(ctx, RecordTransactionRequest{
				UserID:         record.UserID,
				RoomID:         roomID,
				Kind:           domain.WalletTxRefund,
				Amount:         record.Refund,
				IdempotencyKey: fmt.Sprintf("room:%s:refund:%s", roomID, record.UserID),
			}); err != nil {
				return nil, &MemberDebitError{UserID: record.UserID, Err: err}
			}
		}
	}

	// The host fronted the whole fare outside the wallet; everything the
	// guests paid in flows back as one credit.
	var hostRefund int64
	for _, record := range settlements {
		if record.Role == domain.SettlementRoleHost {
			hostRefund = record.Refund
		}
	}
	if hostRefund > 0 {
		if _, err := s.wallet.RecordTransaction(ctx, RecordTransactionRequest{
			UserID:         room.CreatorID,
			RoomID:         roomID,
			Kind:           domain.WalletTxHostRefund,
			Amount:         hostRefund,
			IdempotencyKey: fmt.Sprintf("room:%s:host_refund:%s", roomID, room.CreatorID),
		}); err != nil {
			return nil, &MemberDebitError{UserID: room.CreatorID, Err: err}
		}
	}

	// All money has moved; the bookkeeping below closes the room in one
	// transaction so a crash cannot leave it half finalized.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRoomRepo := postgres.NewRoomRepositoryWithTx(tx)
	txParticipantRepo := postgres.NewParticipantRepositoryWithTx(tx)
	txSettlementRepo := postgres.NewSettlementRepositoryWithTx(tx)
	txHistoryRepo := postgres.NewHistoryRepositoryWithTx(tx)

	for _, record := range settlements {
		if err = txSettlementRepo.Upsert(ctx, record); err != nil {
			return nil, err
		}
		if err = txHistoryRepo.Upsert(ctx, &domain.RideHistory{
			ID:           uuid.New().String(),
			RoomID:       record.RoomID,
			UserID:       record.UserID,
			Role:         record.Role,
			Deposit:      record.Deposit,
			ExtraCollect: record.ExtraCollect,
			Refund:       record.Refund,
			NetAmount:    record.NetAmount,
			ActualFare:   actualFare,
			SettledAt:    time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	room.ActualFare = &actualFare
	room.SettlementStatus = domain.SettlementStatusSettled
	room.Status = domain.RoomStatusClosed
	if err = txRoomRepo.Update(ctx, room); err != nil {
		return nil, err
	}

	// Seats are released only once the money side is complete.
	if err = txParticipantRepo.DeleteByRoom(ctx, roomID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	observability.SettlementsTotal.Inc()
	observability.SettlementLatency.Observe(time.Since(started).Seconds())

	for _, record := range settlements {
		if record.Role == domain.SettlementRoleGuest {
			s.notifications.NotifySettled(ctx, room, record.UserID, actualFare, fareDelta)
		}
	}

	s.logger.Info("room settled",
		"room_id", roomID, "actual_fare", actualFare,
		"fare_delta", fareDelta, "host_refund", hostRefund)

	return settlements, nil
}

// MarkNoShow flags or clears a guest as a no-show. Host only; no-shows are
// excluded from extra collection at finalize but still receive refunds.
func (s *SettlementService) MarkNoShow(ctx context.Context, roomID, actorID, userID string, noShow bool) (*domain.Room, error) {
	room, participants, err := s.loadRoom(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}
	if room.SettlementStatus == domain.SettlementStatusSettled {
		return nil, ErrAlreadyClosed
	}
	if userID == room.CreatorID {
		return nil, ErrForbidden
	}

	found := false
	for _, p := range participants {
		if p.UserID == userID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotParticipant
	}

	flagged := room.IsNoShow(userID)
	switch {
	case noShow && !flagged:
		room.NoShowUserIDs = append(room.NoShowUserIDs, userID)
	case !noShow && flagged:
		kept := room.NoShowUserIDs[:0]
		for _, id := range room.NoShowUserIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		room.NoShowUserIDs = kept
	default:
		return room, nil
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListSettlements returns the room's settlement sheet.
func (s *SettlementService) ListSettlements(ctx context.Context, roomID string) ([]*domain.RoomSettlement, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.settlementRepo.ListByRoom(ctx, roomID)
}

// ListHistory returns a user's settled ride history, newest first.
func (s *SettlementService) ListHistory(ctx context.Context, userID string) ([]*domain.RideHistory, error) {
	return s.historyRepo.ListByUser(ctx, userID)
}

// loadRoom fetches the room and its participants and enforces that the actor
// hosts it.
func (s *SettlementService) loadRoom(ctx context.Context, roomID, actorID string) (*domain.Room, []*domain.RoomParticipant, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrRoomNotFound
		}
		return nil, nil, err
	}
	if room.CreatorID != actorID {
		return nil, nil, ErrForbidden
	}

	participants, err := s.participantRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return room, participants, nil
}

// computeFinalSheet derives every member's final position from the positions
// recorded when the deposit was held. A guest whose seat row has since
// disappeared still appears here: their deposit is in the ledger, so they
// take part in the reconciliation like everyone else.
//
// When the actual fare runs over the estimate the shortfall splits across
// the guests not flagged no-show, rounded up so collection never falls
// short. When it runs under, the surplus splits across every guest, rounded
// down so refunds never exceed it. The host leg carries the sum of what the
// guests paid in, making the sheet net to zero.
func computeFinalSheet(room *domain.Room, held []*domain.RoomSettlement, actualFare int64) []*domain.RoomSettlement {
	fareDelta := actualFare - *room.EstimatedFare

	guestCount := 0
	payingGuests := 0
	for _, h := range held {
		if h.Role != domain.SettlementRoleGuest {
			continue
		}
		guestCount++
		if !room.IsNoShow(h.UserID) {
			payingGuests++
		}
	}

	var extraPerHead, refundPerHead int64
	if fareDelta > 0 && payingGuests > 0 {
		extraPerHead = ceilDiv(fareDelta, int64(payingGuests))
	}
	if fareDelta < 0 && guestCount > 0 {
		refundPerHead = -fareDelta / int64(guestCount)
	}

	sheet := make([]*domain.RoomSettlement, 0, len(held))
	var hostRefund int64

	for _, h := range held {
		if h.Role != domain.SettlementRoleGuest {
			continue
		}

		noShow := room.IsNoShow(h.UserID)
		var extra, refund int64
		if extraPerHead > 0 && !noShow {
			extra = extraPerHead
		}
		if refundPerHead > 0 {
			refund = refundPerHead
			// Never hand back more than was held.
			if refund > h.Deposit {
				refund = h.Deposit
			}
		}

		hostRefund += h.Deposit + extra - refund
		sheet = append(sheet, &domain.RoomSettlement{
			ID:           uuid.New().String(),
			RoomID:       room.ID,
			UserID:       h.UserID,
			Role:         domain.SettlementRoleGuest,
			Deposit:      h.Deposit,
			ExtraCollect: extra,
			Refund:       refund,
			NetAmount:    -(h.Deposit + extra - refund),
			NoShow:       noShow,
			Status:       domain.SettlementRecordSettled,
			UpdatedAt:    time.Now(),
		})
	}

	sheet = append(sheet, &domain.RoomSettlement{
		ID:        uuid.New().String(),
		RoomID:    room.ID,
		UserID:    room.CreatorID,
		Role:      domain.SettlementRoleHost,
		Refund:    hostRefund,
		NetAmount: hostRefund,
		Status:    domain.SettlementRecordSettled,
		UpdatedAt: time.Now(),
	})
	return sheet
}

// ceilDiv divides non-negative amounts rounding up.
func ceilDiv(amount, parts int64) int64 {
	if parts <= 0 {
		return amount
	}
	return (amount + parts - 1) / parts
}
