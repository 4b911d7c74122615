package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

// WalletService keeps per user balances and the transaction ledger
// Every balance change is paired with a ledger row in one db transaction
type WalletService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *WalletService {
	return &WalletService{
		storage: storage,
	}
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().GetWallet(ctx, userID)
}

// Credit adds amount to the user wallet, creating the wallet on first use
func (s *WalletService) Credit(ctx context.Context, userID uuid.UUID, reference string, amount decimal.Decimal) (models.Wallet, error) {
	if !amount.IsPositive() {
		return models.Wallet{}, apperrors.ErrAmountInvalid
	}

	var wallet models.Wallet
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		wallet, err = st.Wallet().AddToBalance(ctx, userID, amount)
		if err != nil {
			return err
		}

		_, err = st.Wallet().CreateTransaction(ctx, wallet.ID, reference, models.TransactionTypeCredit, amount)
		return err
	})
	if err != nil {
		return models.Wallet{}, err
	}

	return wallet, nil
}

// Debit subtracts amount from the user wallet
// Returns apperrors.ErrBalanceInsufficient if balance < amount
func (s *WalletService) Debit(ctx context.Context, userID uuid.UUID, reference string, amount decimal.Decimal) (models.Wallet, error) {
	if !amount.IsPositive() {
		return models.Wallet{}, apperrors.ErrAmountInvalid
	}

	var wallet models.Wallet
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		wallet, err = st.Wallet().SubtractFromBalance(ctx, userID, amount)
		if err != nil {
			return err
		}

		_, err = st.Wallet().CreateTransaction(ctx, wallet.ID, reference, models.TransactionTypeDebit, amount)
		return err
	})
	if err != nil {
		return models.Wallet{}, err
	}

	return wallet, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID) ([]models.WalletTransaction, error) {
	wallet, err := s.storage.Wallet().GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.storage.Wallet().ListTransactions(ctx, wallet.ID)
}
