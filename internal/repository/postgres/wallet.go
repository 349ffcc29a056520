package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Create appends a ledger row. The UNIQUE(idempotency_key) constraint turns a
// retried write into ErrDuplicate so the caller can return the original row.
func (r *WalletRepository) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	metadata, err := marshalMetadata(tx.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallet_transactions (
			id, user_id, room_id, kind, amount, currency, status, idempotency_key, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.q.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		nullString(tx.RoomID),
		tx.Kind,
		tx.Amount,
		tx.Currency,
		tx.Status,
		nullString(tx.IdempotencyKey),
		metadata,
		tx.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

const walletColumns = `
	id, user_id, COALESCE(room_id, ''), kind, amount, currency, status,
	COALESCE(idempotency_key, ''), metadata, created_at`

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
// Returns nil, nil when no transaction carries the key.
func (r *WalletRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	query := `SELECT` + walletColumns + ` FROM wallet_transactions WHERE idempotency_key = $1`

	tx, err := scanWalletTx(r.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

// ListByUser retrieves a user's transactions, newest first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	query := `SELECT` + walletColumns + ` FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SumByUser returns the sum of a user's transaction amounts.
func (r *WalletRepository) SumByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE user_id = $1`, userID,
	).Scan(&sum)
	return sum, err
}

func scanWalletTx(row rowScanner) (*domain.WalletTransaction, error) {
	var tx domain.WalletTransaction
	var metadata []byte

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.RoomID,
		&tx.Kind,
		&tx.Amount,
		&tx.Currency,
		&tx.Status,
		&tx.IdempotencyKey,
		&metadata,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return nil, err
		}
	}
	return &tx, nil
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
