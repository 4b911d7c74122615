package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

type Wallet struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Balance decimal.Decimal
}

type WalletTransaction struct {
	ID        uuid.UUID
	WalletID  uuid.UUID
	CreatedAt time.Time
	Reference string
	Type      string
	Amount    decimal.Decimal
}
