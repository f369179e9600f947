package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"
)

// Balance fica em unidades menores da moeda.
type Wallet struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByUserID devolve nil, nil quando o usuário ainda não tem carteira.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*Wallet, error) {
	var w Wallet
	var updated string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, balance, currency, updated_at FROM wallets WHERE user_id = ?
	`, userID).Scan(&w.UserID, &w.Balance, &w.Currency, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("WALLET_GET_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	if w.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, oops.Code("WALLET_GET_FAILED").Wrap(err)
	}
	return &w, nil
}

// Ensure cria a carteira zerada se não existir e devolve a gravada.
// Carteira existente mantém saldo e moeda.
func (r *WalletRepository) Ensure(ctx context.Context, userID, currency string) (*Wallet, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, currency, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, currency, formatTime(nowUTC()))
	if err != nil {
		return nil, oops.Code("WALLET_UPSERT_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	w, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, oops.Code("WALLET_UPSERT_FAILED").
			With("user_id", userID).
			Wrap(ErrNotFound)
	}
	return w, nil
}
