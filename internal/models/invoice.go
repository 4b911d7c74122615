package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusVoid    = "void"
)

type Invoice struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ClientID    uuid.UUID
	CreatedAt   time.Time
	Reference   string
	Description string
	Amount      decimal.Decimal
	Status      string
	DueDate     *time.Time
	PaidAt      *time.Time
}
