package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/userctx"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/payment"
)

type paymentProvider interface {
	Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (payment.Transaction, error)
	Verify(ctx context.Context, reference string) (payment.Transaction, error)
}

// Start a provider checkout session for a pending invoice
// The returned url is where the client pays
func handlePayInvoice(invoiceService invoiceService, clientService clientService, provider paymentProvider, l logger.Logger) http.Handler {
	type response struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}

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
		if err != nil {
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
			return
		}
		if invoice.Status != models.InvoiceStatusPending {
			render.ServiceError(w, "Invoice status does not allow payment", http.StatusConflict)
			return
		}

		// The checkout session is addressed to the billed client
		billed, err := clientService.Get(r.Context(), invoice.ClientID, user.ID)
		if err != nil {
			render.ServiceError(w, "Client not found", http.StatusNotFound)
			return
		}

		tx, err := provider.Initialize(r.Context(), billed.Email, invoice.Amount, invoice.Reference)
		if err != nil {
			l.Error("Failed to initialize checkout", "error", err, "reference", invoice.Reference)
			render.ServiceError(w, "Payment provider unavailable", http.StatusBadGateway)
			return
		}

		render.JSON(w, response{
			AuthorizationURL: tx.AuthorizationURL,
			Reference:        tx.Reference,
		})
	})
}

// Ask the provider for the transaction state and settle the invoice if it
// succeeded. Fallback for missed webhooks
func handleVerifyInvoicePayment(invoiceService invoiceService, provider paymentProvider, l logger.Logger, m paymentMetrics) http.Handler {
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
		if err != nil {
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
			return
		}

		if invoice.Status == models.InvoiceStatusPaid {
			render.JSON(w, toInvoiceResponse(invoice))
			return
		}

		tx, err := provider.Verify(r.Context(), invoice.Reference)
		if err != nil {
			var pe *payment.PaymentError
			if errors.As(err, &pe) && pe.Code == payment.CodeNotFound {
				render.ServiceError(w, "No payment for this invoice yet", http.StatusNotFound)
				return
			}
			l.Error("Failed to verify transaction", "error", err, "reference", invoice.Reference)
			render.ServiceError(w, "Payment provider unavailable", http.StatusBadGateway)
			return
		}

		if tx.Status != payment.StatusSuccess {
			render.ServiceError(w, "Payment not settled yet", http.StatusConflict)
			return
		}

		invoice, err = invoiceService.MarkPaidByReference(r.Context(), invoice.Reference)
		switch {
		case err == nil:
			m.RecordPaymentSettled()
			render.JSON(w, toInvoiceResponse(invoice))
		case errors.Is(err, apperrors.ErrInvoiceStatusInvalid):
			render.ServiceError(w, "Invoice status does not allow settlement", http.StatusConflict)
		default:
			l.Error("Failed to settle invoice", "error", err, "reference", invoice.Reference)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
