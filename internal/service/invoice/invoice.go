package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

// InvoiceService drives the invoice lifecycle
// Invoices start as drafts, get finalized to pending and end up paid or void
type InvoiceService struct {
	storage repository.Storage

	// Time source, replaceable in tests
	now func() time.Time
}

func NewService(storage repository.Storage) *InvoiceService {
	return &InvoiceService{
		storage: storage,
		now:     time.Now,
	}
}

// Create saves a new draft invoice for one of the user's clients
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, arg repository.CreateInvoiceParams) (models.Invoice, error) {
	if !arg.Amount.IsPositive() {
		return models.Invoice{}, apperrors.ErrAmountInvalid
	}

	// Client must exist and belong to the user
	_, err := s.storage.Client().GetClient(ctx, arg.ClientID, userID)
	if err != nil {
		return models.Invoice{}, err
	}

	return s.storage.Invoice().CreateInvoice(ctx, userID, arg)
}

func (s *InvoiceService) Get(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
	return s.storage.Invoice().GetInvoice(ctx, invoiceID, userID)
}

func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	return s.storage.Invoice().ListInvoices(ctx, userID)
}

// Finalize moves a draft invoice to pending so it may be paid
func (s *InvoiceService) Finalize(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
	invoice, err := s.storage.Invoice().GetInvoice(ctx, invoiceID, userID)
	if err != nil {
		return models.Invoice{}, err
	}

	if invoice.Status != models.InvoiceStatusDraft {
		return models.Invoice{}, fmt.Errorf("%w: %s invoice can not be finalized", apperrors.ErrInvoiceStatusInvalid, invoice.Status)
	}

	return s.storage.Invoice().UpdateInvoiceStatus(ctx, invoiceID, models.InvoiceStatusPending, nil)
}

// Void cancels a draft or pending invoice
func (s *InvoiceService) Void(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
	invoice, err := s.storage.Invoice().GetInvoice(ctx, invoiceID, userID)
	if err != nil {
		return models.Invoice{}, err
	}

	switch invoice.Status {
	case models.InvoiceStatusDraft, models.InvoiceStatusPending:
	default:
		return models.Invoice{}, fmt.Errorf("%w: %s invoice can not be voided", apperrors.ErrInvoiceStatusInvalid, invoice.Status)
	}

	return s.storage.Invoice().UpdateInvoiceStatus(ctx, invoiceID, models.InvoiceStatusVoid, nil)
}

// MarkPaidByReference settles a pending invoice after a confirmed payment
// Marks it paid and credits the owner's wallet in one db transaction
// Already paid invoices are left untouched so payment callbacks may repeat
func (s *InvoiceService) MarkPaidByReference(ctx context.Context, reference string) (models.Invoice, error) {
	var invoice models.Invoice

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		invoice, err = st.Invoice().GetInvoiceByReference(ctx, reference)
		if err != nil {
			return err
		}

		if invoice.Status == models.InvoiceStatusPaid {
			return nil
		}
		if invoice.Status != models.InvoiceStatusPending {
			return fmt.Errorf("%w: %s invoice can not be paid", apperrors.ErrInvoiceStatusInvalid, invoice.Status)
		}

		paidAt := s.now()
		invoice, err = st.Invoice().UpdateInvoiceStatus(ctx, invoice.ID, models.InvoiceStatusPaid, &paidAt)
		if err != nil {
			return err
		}

		wallet, err := st.Wallet().AddToBalance(ctx, invoice.UserID, invoice.Amount)
		if err != nil {
			return err
		}

		_, err = st.Wallet().CreateTransaction(ctx, wallet.ID, invoice.Reference, models.TransactionTypeCredit, invoice.Amount)
		return err
	})
	if err != nil {
		return models.Invoice{}, err
	}

	return invoice, nil
}
