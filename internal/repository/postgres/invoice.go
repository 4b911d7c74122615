package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

type InvoiceRepo struct {
	DB DBTX
}

const createInvoice = `-- name: CreateInvoice
INSERT INTO invoices (id, user_id, client_id, reference, description, amount, status, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, client_id, created_at, reference, description, amount, status, due_date, paid_at
`

func (r *InvoiceRepo) CreateInvoice(ctx context.Context, userID uuid.UUID, arg repository.CreateInvoiceParams) (models.Invoice, error) {
	rows, _ := r.DB.Query(ctx, createInvoice,
		uuid.New(), userID, arg.ClientID, arg.Reference, arg.Description, arg.Amount, models.InvoiceStatusDraft, arg.DueDate)
	invoice, err := pgx.CollectOneRow(rows, rowToInvoice)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return invoice, apperrors.ErrInvoiceAlreadyExists
		}

		return invoice, fmt.Errorf("db error: %w", err)
	}

	return invoice, nil
}

const getInvoice = `-- name: GetInvoice
SELECT id, user_id, client_id, created_at, reference, description, amount, status, due_date, paid_at
FROM invoices
WHERE id = $1 AND user_id = $2
`

func (r *InvoiceRepo) GetInvoice(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
	rows, _ := r.DB.Query(ctx, getInvoice, invoiceID, userID)
	invoice, err := pgx.CollectOneRow(rows, rowToInvoice)

	switch {
	case err == nil:
		return invoice, nil
	case errors.Is(err, pgx.ErrNoRows):
		return invoice, apperrors.ErrInvoiceNotFound
	default:
		return invoice, fmt.Errorf("db error: %w", err)
	}
}

const getInvoiceByReference = `-- name: GetInvoiceByReference
SELECT id, user_id, client_id, created_at, reference, description, amount, status, due_date, paid_at
FROM invoices
WHERE reference = $1
`

func (r *InvoiceRepo) GetInvoiceByReference(ctx context.Context, reference string) (models.Invoice, error) {
	rows, _ := r.DB.Query(ctx, getInvoiceByReference, reference)
	invoice, err := pgx.CollectOneRow(rows, rowToInvoice)

	switch {
	case err == nil:
		return invoice, nil
	case errors.Is(err, pgx.ErrNoRows):
		return invoice, apperrors.ErrInvoiceNotFound
	default:
		return invoice, fmt.Errorf("db error: %w", err)
	}
}

const listInvoices = `-- name: ListInvoices
SELECT id, user_id, client_id, created_at, reference, description, amount, status, due_date, paid_at
FROM invoices
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *InvoiceRepo) ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	rows, _ := r.DB.Query(ctx, listInvoices, userID)
	invoices, err := pgx.CollectRows(rows, rowToInvoice)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return invoices, nil
}

const updateInvoiceStatus = `-- name: UpdateInvoiceStatus
UPDATE invoices
SET status = $2, paid_at = $3
WHERE id = $1
RETURNING id, user_id, client_id, created_at, reference, description, amount, status, due_date, paid_at
`

func (r *InvoiceRepo) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status string, paidAt *time.Time) (models.Invoice, error) {
	rows, _ := r.DB.Query(ctx, updateInvoiceStatus, invoiceID, status, paidAt)
	invoice, err := pgx.CollectOneRow(rows, rowToInvoice)

	switch {
	case err == nil:
		return invoice, nil
	case errors.Is(err, pgx.ErrNoRows):
		return invoice, apperrors.ErrInvoiceNotFound
	default:
		return invoice, fmt.Errorf("db error: %w", err)
	}
}

func rowToInvoice(row pgx.CollectableRow) (models.Invoice, error) {
	var i models.Invoice
	err := row.Scan(&i.ID, &i.UserID, &i.ClientID, &i.CreatedAt, &i.Reference, &i.Description, &i.Amount, &i.Status, &i.DueDate, &i.PaidAt)
	return i, err
}
