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
	"github.com/yeeuneey/GogoTaxi-back/internal/payments"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository/postgres"
)

// WalletService owns the append-only ledger and the cached per-user balance.
// Every money movement in the system passes through RecordTransaction.
type WalletService struct {
	db         *sql.DB
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	charger    payments.Charger
	topUpUnit  int64
	currency   string
	logger     *slog.Logger
}

// NewWalletService creates a new WalletService. topUpUnit is the minor-unit
// granularity auto top-ups are rounded up to (10,000 KRW in production).
func NewWalletService(
	db *sql.DB,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	charger payments.Charger,
	topUpUnit int64,
	currency string,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		db:         db,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		charger:    charger,
		topUpUnit:  topUpUnit,
		currency:   currency,
		logger:     logger,
	}
}

// Balance returns the cached wallet balance.
func (s *WalletService) Balance(ctx context.Context, userID string) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.WalletBalance, nil
}

// RecordTransactionRequest contains the parameters for a ledger write.
type RecordTransactionRequest struct {
	UserID         string
	RoomID         string
	Kind           domain.WalletTxKind
	Amount         int64 // signed: + credit, - debit
	IdempotencyKey string
	AllowNegative  bool
	Metadata       map[string]string
}

// RecordTransaction appends a ledger row and updates the cached balance in
// one atomic unit. When the idempotency key is already present the stored
// transaction is returned unchanged, making retried calls safe. A debit that
// would push the balance below zero fails with ErrInsufficientBalance and
// applies nothing.
func (s *WalletService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*domain.WalletTransaction, error) {
	if req.UserID == "" {
		return nil, ErrUserNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txUserRepo := postgres.NewUserRepositoryWithTx(tx)
	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)

	if req.IdempotencyKey != "" {
		var existing *domain.WalletTransaction
		existing, err = txWalletRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			// Duplicate submission: return the original result, no double-apply.
			if err = tx.Commit(); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	// Row lock serializes concurrent writes for the same user so the balance
	// read and write stay one atomic step.
	var user *domain.User
	user, err = txUserRepo.GetByIDForUpdate(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrUserNotFound
		}
		return nil, err
	}

	nextBalance := user.WalletBalance + req.Amount
	if !req.AllowNegative && nextBalance < 0 {
		err = ErrInsufficientBalance
		return nil, err
	}

	record := &domain.WalletTransaction{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		RoomID:         req.RoomID,
		Kind:           req.Kind,
		Amount:         req.Amount,
		Currency:       s.currency,
		Status:         domain.WalletTxStatusSuccess,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
		CreatedAt:      time.Now(),
	}

	if err = txWalletRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && req.IdempotencyKey != "" {
			// A concurrent writer committed the same key between our read and
			// insert. Their row is the canonical result.
			_ = tx.Rollback()
			err = nil
			return s.walletRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	if err = txUserRepo.UpdateBalance(ctx, req.UserID, nextBalance); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	observability.LedgerWritesTotal.WithLabelValues(string(req.Kind)).Inc()
	return record, nil
}

// ChargeRequest contains the parameters for a generic wallet charge. Amount
// is a positive magnitude; the kind decides which way the money moves.
type ChargeRequest struct {
	UserID         string
	RoomID         string
	Kind           domain.WalletTxKind
	Amount         int64
	IdempotencyKey string
}

// Charge applies a ledger movement of the named kind: credit kinds add to
// the wallet, debit kinds subtract after topping the balance up from the
// payment rail when it cannot cover the amount.
func (s *WalletService) Charge(ctx context.Context, req ChargeRequest) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !domain.ValidWalletTxKind(string(req.Kind)) {
		return nil, ErrInvalidTxKind
	}

	amount := req.Amount
	if !req.Kind.IsCredit() {
		if _, err := s.EnsureBalanceForDebit(ctx, req.UserID, req.Amount, req.RoomID, string(req.Kind)); err != nil {
			return nil, err
		}
		amount = -req.Amount
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = fmt.Sprintf("%s:%s", req.Kind, uuid.New().String())
	}

	return s.RecordTransaction(ctx, RecordTransactionRequest{
		UserID:         req.UserID,
		RoomID:         req.RoomID,
		Kind:           req.Kind,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
	})
}

// EnsureBalanceResult reports what EnsureBalanceForDebit did.
type EnsureBalanceResult struct {
	AutoTopUp   bool
	Deficit     int64
	TopUpAmount int64
	PaymentID   string
}

// EnsureBalanceForDebit tops the wallet up from the external payment rail
// when the balance cannot cover the upcoming debit. The top-up is rounded up
// to the next topUpUnit and credited as an auto_top_up with an idempotency
// key derived from the charge, so a retried charge never double-credits.
func (s *WalletService) EnsureBalanceForDebit(ctx context.Context, userID string, amount int64, roomID, reason string) (*EnsureBalanceResult, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance >= amount {
		return &EnsureBalanceResult{}, nil
	}

	deficit := amount - balance
	topUp := roundUpToUnit(deficit, s.topUpUnit)

	paymentID, err := s.charger.Charge(ctx, userID, topUp, s.currency)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "debit"
	}
	scope := roomID
	if scope == "" {
		scope = "general"
	}

	_, err = s.RecordTransaction(ctx, RecordTransactionRequest{
		UserID:         userID,
		RoomID:         roomID,
		Kind:           domain.WalletTxAutoTopUp,
		Amount:         topUp,
		IdempotencyKey: fmt.Sprintf("auto_top_up:%s:%s:%s:%s", reason, scope, userID, paymentID),
		Metadata:       map[string]string{"payment_id": paymentID, "reason": reason},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet auto top-up",
		"user_id", userID, "deficit", deficit, "top_up", topUp, "payment_id", paymentID)

	return &EnsureBalanceResult{
		AutoTopUp:   true,
		Deficit:     deficit,
		TopUpAmount: topUp,
		PaymentID:   paymentID,
	}, nil
}

// roundUpToUnit rounds amount up to the next multiple of unit.
func roundUpToUnit(amount, unit int64) int64 {
	if unit <= 0 {
		return amount
	}
	return ((amount + unit - 1) / unit) * unit
}

// ListTransactions returns the user's ledger, newest first.
func (s *WalletService) ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	if _, err := s.Balance(ctx, userID); err != nil {
		return nil, err
	}
	return s.walletRepo.ListByUser(ctx, userID, limit)
}

// AuditBalance recomputes the ledger sum and compares it against the cached
// balance. A mismatch means the balance invariant was broken.
func (s *WalletService) AuditBalance(ctx context.Context, userID string) (bool, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	sum, err := s.walletRepo.SumByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if sum != balance {
		s.logger.Error("wallet balance drift detected",
			"user_id", userID, "cached", balance, "ledger_sum", sum)
	}
	return sum == balance, nil
}
