package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/userctx"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

type InvoiceResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Reference   string          `json:"reference"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toInvoiceResponse(i models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          i.ID,
		ClientID:    i.ClientID,
		Reference:   i.Reference,
		Description: i.Description,
		Amount:      i.Amount,
		Status:      i.Status,
		DueDate:     i.DueDate,
		PaidAt:      i.PaidAt,
		CreatedAt:   i.CreatedAt,
	}
}

func handleCreateInvoice(invoiceService invoiceService, l logger.Logger) http.Handler {
	type request struct {
		ClientID    uuid.UUID       `json:"client_id" validate:"required"`
		Reference   string          `json:"reference" validate:"required,min=3,max=50"`
		Description string          `json:"description" validate:"omitempty,max=500"`
		Amount      decimal.Decimal `json:"amount" validate:"required"`
		DueDate     *time.Time      `json:"due_date"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		invoice, err := invoiceService.Create(r.Context(), user.ID, repository.CreateInvoiceParams{
			ClientID:    data.ClientID,
			Reference:   data.Reference,
			Description: data.Description,
			Amount:      data.Amount,
			DueDate:     data.DueDate,
		})
		switch {
		case err == nil:
			render.JSONWithStatus(w, toInvoiceResponse(invoice), http.StatusCreated)
		case errors.Is(err, apperrors.ErrClientNotFound):
			render.ServiceError(w, "Client not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvoiceAlreadyExists):
			render.ServiceError(w, "Invoice reference already exists", http.StatusConflict)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusBadRequest)
		default:
			l.Error("Failed to create invoice", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetInvoice(invoiceService invoiceService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		invoiceID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
			return
		}

		invoice, err := invoiceService.Get(r.Context(), invoiceID, user.ID)
		switch {
		case err == nil:
			render.JSON(w, toInvoiceResponse(invoice))
		case errors.Is(err, apperrors.ErrInvoiceNotFound):
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
		default:
			l.Error("Failed to get invoice", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListInvoices(invoiceService invoiceService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		invoices, err := invoiceService.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list invoices", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]InvoiceResponse, 0, len(invoices))
		for _, i := range invoices {
			response = append(response, toInvoiceResponse(i))
		}
		render.JSON(w, response)
	})
}

func handleFinalizeInvoice(invoiceService invoiceService, l logger.Logger) http.Handler {
	return invoiceTransition(l, func(r *http.Request, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
		return invoiceService.Finalize(r.Context(), invoiceID, userID)
	})
}

func handleVoidInvoice(invoiceService invoiceService, l logger.Logger) http.Handler {
	return invoiceTransition(l, func(r *http.Request, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error) {
		return invoiceService.Void(r.Context(), invoiceID, userID)
	})
}

// Shared handler body for status transitions, they differ only in the service call
func invoiceTransition(l logger.Logger, transition func(r *http.Request, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		invoiceID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
			return
		}

		invoice, err := transition(r, invoiceID, user.ID)
		switch {
		case err == nil:
			render.JSON(w, toInvoiceResponse(invoice))
		case errors.Is(err, apperrors.ErrInvoiceNotFound):
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvoiceStatusInvalid):
			render.ServiceError(w, "Invoice status does not allow this transition", http.StatusConflict)
		default:
			l.Error("Failed to change invoice status", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
