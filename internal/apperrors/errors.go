package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailInvalid      = errors.New("email is not valid")

	ErrTokenNotFound = errors.New("token not found")
	ErrTokenRevoked  = errors.New("token is revoked")
	ErrOTPInvalid    = errors.New("one-time password is invalid or expired")

	ErrClientNotFound = errors.New("client not found")

	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceAlreadyExists = errors.New("invoice reference already exists")
	ErrInvoiceStatusInvalid = errors.New("invoice status does not allow this transition")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBalanceInsufficient = errors.New("insufficient balance")
	ErrAmountInvalid       = errors.New("amount must be positive")

	// Wrapped around unexpected failures in multi step operations
	ErrInternal = errors.New("internal error")
)
