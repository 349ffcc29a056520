package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, name, wallet_balance, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.WalletBalance, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, name, wallet_balance, created_at FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a user and row-locks it until the enclosing
// transaction ends. Concurrent wallet writes for the same user serialize on
// this lock, keeping the balance read + write atomic.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, name, wallet_balance, created_at FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) get(ctx context.Context, query, id string) (*domain.User, error) {
	var user domain.User
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.WalletBalance, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateBalance sets the cached wallet balance.
func (r *UserRepository) UpdateBalance(ctx context.Context, id string, balance int64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET wallet_balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
