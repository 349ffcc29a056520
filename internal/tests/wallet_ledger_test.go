package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// applyLedger performs the atomic ledger step the wallet layer runs inside a
// storage transaction: check the idempotency key, append the row, move the
// cached balance. It returns the recorded transaction, or the stored one when
// the key was already present.
func applyLedger(ctx context.Context, t *testing.T, userRepo *MockUserRepository, walletRepo *MockWalletRepository, userID string, kind domain.WalletTxKind, amount int64, key string) *domain.WalletTransaction {
	t.Helper()

	if key != "" {
		existing, err := walletRepo.GetByIdempotencyKey(ctx, key)
		if err != nil {
			t.Fatalf("idempotency read failed: %v", err)
		}
		if existing != nil {
			return existing
		}
	}

	user, err := userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		t.Fatalf("user read failed: %v", err)
	}

	record := &domain.WalletTransaction{
		ID:             uuid.New().String(),
		UserID:         userID,
		Kind:           kind,
		Amount:         amount,
		Currency:       "KRW",
		Status:         domain.WalletTxStatusSuccess,
		IdempotencyKey: key,
		CreatedAt:      time.Now(),
	}
	if err := walletRepo.Create(ctx, record); err != nil {
		t.Fatalf("ledger append failed: %v", err)
	}
	if err := userRepo.UpdateBalance(ctx, userID, user.WalletBalance+amount); err != nil {
		t.Fatalf("balance update failed: %v", err)
	}
	return record
}

func TestLedger_BalanceMatchesTransactionSum(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	userRepo.AddUser(&domain.User{ID: "user-1"})

	applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxTopUp, 50000, "k1")
	applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxHoldDeposit, -12000, "k2")
	applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxRefund, 2000, "k3")
	applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxExtraCollect, -500, "k4")

	sum, err := walletRepo.SumByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if balance := userRepo.Balance("user-1"); balance != sum {
		t.Errorf("cached balance %d does not equal ledger sum %d", balance, sum)
	}
	if sum != 39500 {
		t.Errorf("ledger sum = %d, want 39500", sum)
	}
}

func TestLedger_IdempotencyKeyPreventsDoubleApply(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", WalletBalance: 0})

	key := "room:room-1:hold:user-1"
	first := applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxTopUp, 10000, key)

	// Retrying the same logical operation must return the original row and
	// leave the balance untouched.
	second := applyLedger(ctx, t, userRepo, walletRepo, "user-1", domain.WalletTxTopUp, 10000, key)

	if first.ID != second.ID {
		t.Error("retry produced a new transaction")
	}
	if balance := userRepo.Balance("user-1"); balance != 10000 {
		t.Errorf("balance = %d after retry, want 10000", balance)
	}
}

func TestLedger_DuplicateKeyRejectedAtStorage(t *testing.T) {
	ctx := context.Background()
	walletRepo := NewMockWalletRepository()

	tx := &domain.WalletTransaction{ID: "t1", UserID: "u", Amount: 100, IdempotencyKey: "same"}
	if err := walletRepo.Create(ctx, tx); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dup := &domain.WalletTransaction{ID: "t2", UserID: "u", Amount: 100, IdempotencyKey: "same"}
	if err := walletRepo.Create(ctx, dup); err != repository.ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestCharger_RecordsChargedAmounts(t *testing.T) {
	ctx := context.Background()
	charger := &MockCharger{}

	if _, err := charger.Charge(ctx, "user-1", 10000, "KRW"); err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if _, err := charger.Charge(ctx, "user-1", 20000, "KRW"); err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	if total := charger.ChargedTotal(); total != 30000 {
		t.Errorf("charged total = %d, want 30000", total)
	}
	if charger.ChargeCallCount != 2 {
		t.Errorf("charge calls = %d, want 2", charger.ChargeCallCount)
	}
}
