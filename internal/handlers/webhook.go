package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
)

const (
	webhookSignatureHeader = "X-Payment-Signature"

	// Provider event fired when a charge settles
	eventChargeSuccess = "charge.success"
)

func handlePaymentWebhook(invoiceService invoiceService, verifier webhookVerifier, l logger.Logger, m paymentMetrics) http.Handler {
	type event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The signature covers the raw body, read it before decoding
		r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			render.ServiceError(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		if !verifier.VerifyWebhook(r.Header.Get(webhookSignatureHeader), body) {
			l.Warn("Webhook with invalid signature", "remote_addr", r.RemoteAddr)
			render.ServiceError(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		var ev event
		if err := json.Unmarshal(body, &ev); err != nil {
			render.DecodeError(w, err)
			return
		}

		if ev.Event != eventChargeSuccess {
			// Unhandled events are acknowledged so the provider stops retrying
			render.JSON(w, response{Message: "Event ignored"})
			return
		}

		_, err = invoiceService.MarkPaidByReference(r.Context(), ev.Data.Reference)
		switch {
		case err == nil:
			m.RecordPaymentSettled()
			render.JSON(w, response{Message: "Invoice settled"})
		case errors.Is(err, apperrors.ErrInvoiceNotFound):
			render.ServiceError(w, "Invoice not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvoiceStatusInvalid):
			render.ServiceError(w, "Invoice status does not allow settlement", http.StatusConflict)
		default:
			l.Error("Failed to settle invoice", "error", err, "reference", ev.Data.Reference)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
