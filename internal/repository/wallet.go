package repository

import (
	"context"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// UserRepository defines the persistence operations for users and the
// cached wallet balance.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDForUpdate retrieves a user and row-locks it for the duration of
	// the enclosing transaction, serializing concurrent balance writes.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)

	// UpdateBalance sets the cached wallet balance.
	UpdateBalance(ctx context.Context, id string, balance int64) error
}

// WalletRepository defines the persistence operations for the ledger.
type WalletRepository interface {
	// Create appends a ledger row. Returns ErrDuplicate when the idempotency
	// key is already present.
	Create(ctx context.Context, tx *domain.WalletTransaction) error

	// GetByIdempotencyKey retrieves a transaction by its idempotency key.
	// Returns nil, nil when no transaction carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error)

	// ListByUser retrieves a user's transactions, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error)

	// SumByUser returns the sum of a user's transaction amounts. Used to audit
	// the cached balance invariant.
	SumByUser(ctx context.Context, userID string) (int64, error)
}
