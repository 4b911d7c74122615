package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
)

type WalletRepo struct {
	DB DBTX
}

const getWallet = `-- name: GetWallet
SELECT id, user_id, balance FROM wallets
WHERE user_id = $1
`

func (r *WalletRepo) GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getWallet, userID)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

// Wallet row is created lazily on first credit
const addToBalance = `-- name: AddToBalance
INSERT INTO wallets (id, user_id, balance)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance
RETURNING id, user_id, balance
`

func (r *WalletRepo) AddToBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, addToBalance, uuid.New(), userID, amount)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)
	if err != nil {
		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const subtractFromBalance = `-- name: SubtractFromBalance
UPDATE wallets
SET balance = balance - $2
WHERE user_id = $1 AND balance >= $2
RETURNING id, user_id, balance
`

func (r *WalletRepo) SubtractFromBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, subtractFromBalance, userID, amount)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		// No row updated: either wallet missing or balance too low
		_, getErr := r.GetWallet(ctx, userID)
		if getErr != nil {
			return wallet, getErr
		}
		return wallet, apperrors.ErrBalanceInsufficient
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO wallet_transactions (id, wallet_id, reference, type, amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, wallet_id, created_at, reference, type, amount
`

func (r *WalletRepo) CreateTransaction(ctx context.Context, walletID uuid.UUID, reference string, txType string, amount decimal.Decimal) (models.WalletTransaction, error) {
	rows, _ := r.DB.Query(ctx, createTransaction, uuid.New(), walletID, reference, txType, amount)
	tx, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return tx, fmt.Errorf("db error: %w", err)
	}

	return tx, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, wallet_id, created_at, reference, type, amount
FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC
`

func (r *WalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID) ([]models.WalletTransaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactions, walletID)
	txs, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return txs, nil
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance)
	return w, err
}

func rowToTransaction(row pgx.CollectableRow) (models.WalletTransaction, error) {
	var t models.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.CreatedAt, &t.Reference, &t.Type, &t.Amount)
	return t, err
}
