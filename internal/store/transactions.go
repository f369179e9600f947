package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

const TransactionTypePayout = "payout"

// Amount fica em unidades menores da moeda (centavos).
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t Transaction) (*Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = nowUTC()
	}
	if len(t.Meta) == 0 {
		t.Meta = json.RawMessage(`{}`)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, currency, status, reference, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Type, t.Amount, t.Currency, t.Status, t.Reference, string(t.Meta), formatTime(t.CreatedAt))
	if err != nil {
		return nil, oops.Code("TRANSACTION_CREATE_FAILED").
			With("reference", t.Reference).
			Wrap(err)
	}
	return &t, nil
}

// GetByReference só encontra transações do próprio userID.
func (r *TransactionRepository) GetByReference(ctx context.Context, userID, reference string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount, currency, status, reference, meta, created_at
		FROM transactions
		WHERE reference = ? AND user_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, reference, userID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("TRANSACTION_NOT_FOUND").
			With("reference", reference).
			Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TRANSACTION_GET_FAILED").
			With("reference", reference).
			Wrap(err)
	}
	return t, nil
}

// ListByType devolve transações do tipo, mais recentes primeiro.
func (r *TransactionRepository) ListByType(ctx context.Context, txType string, limit, offset int) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, currency, status, reference, meta, created_at
		FROM transactions
		WHERE type = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, txType, limit, offset)
	if err != nil {
		return nil, oops.Code("TRANSACTION_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, oops.Code("TRANSACTION_LIST_FAILED").Wrap(err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TRANSACTION_LIST_FAILED").Wrap(err)
	}
	return out, nil
}

func scanTransaction(s scanner) (*Transaction, error) {
	var t Transaction
	var meta, created string
	if err := s.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Currency, &t.Status, &t.Reference, &meta, &created); err != nil {
		return nil, err
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = ts
	t.Meta = json.RawMessage(meta)
	return &t, nil
}
