package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/render"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/userctx"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
)

func handleWalletBalance(walletService walletService, l logger.Logger) http.Handler {
	type response struct {
		Balance decimal.Decimal `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		wallet, err := walletService.Balance(r.Context(), user.ID)
		switch {
		case err == nil:
			render.JSON(w, response{Balance: wallet.Balance})
		case errors.Is(err, apperrors.ErrWalletNotFound):
			// A user without payments simply has nothing on balance yet
			render.JSON(w, response{Balance: decimal.Zero})
		default:
			l.Error("Failed to get wallet balance", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleWalletWithdraw(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		Reference string          `json:"reference" validate:"required,min=3,max=50"`
		Amount    decimal.Decimal `json:"amount" validate:"required"`
	}
	type response struct {
		Balance decimal.Decimal `json:"balance"`
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

		wallet, err := walletService.Debit(r.Context(), user.ID, data.Reference, data.Amount)
		switch {
		case err == nil:
			render.JSON(w, response{Balance: wallet.Balance})
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrWalletNotFound):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusBadRequest)
		default:
			l.Error("Failed to withdraw from wallet", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleWalletTransactions(walletService walletService, l logger.Logger) http.Handler {
	type transaction struct {
		Reference string          `json:"reference"`
		Type      string          `json:"type"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		txs, err := walletService.Transactions(r.Context(), user.ID)
		switch {
		case err == nil:
			response := make([]transaction, 0, len(txs))
			for _, t := range txs {
				response = append(response, transaction{
					Reference: t.Reference,
					Type:      t.Type,
					Amount:    t.Amount,
					CreatedAt: t.CreatedAt,
				})
			}
			render.JSON(w, response)
		case errors.Is(err, apperrors.ErrWalletNotFound):
			render.JSON(w, []transaction{})
		default:
			l.Error("Failed to list wallet transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
