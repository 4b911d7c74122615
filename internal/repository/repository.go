package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/models"
)

type CreateUserParams struct {
	Email        string
	FullName     string
	PasswordHash string
	Role         string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Overwrite the stored password hash
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) (models.User, error)

	// Overwrite the stored refresh token hash
	// nil clears the hash and ends the active session
	UpdateRefreshTokenHash(ctx context.Context, userID uuid.UUID, tokenHash *string) (models.User, error)
}

type ClientParams struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

// Client repository interface
// All reads and writes are scoped to the owning user
type ClientRepo interface {
	CreateClient(ctx context.Context, userID uuid.UUID, arg ClientParams) (models.Client, error)

	// Must return apperrors.ErrClientNotFound for missing or foreign owned clients
	GetClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) (models.Client, error)
	ListClients(ctx context.Context, userID uuid.UUID) ([]models.Client, error)
	UpdateClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID, arg ClientParams) (models.Client, error)
	DeleteClient(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) error
}

type CreateInvoiceParams struct {
	ClientID    uuid.UUID
	Reference   string
	Description string
	Amount      decimal.Decimal
	DueDate     *time.Time
}

// Invoice repository interface
type InvoiceRepo interface {
	// Duplicate reference must return apperrors.ErrInvoiceAlreadyExists
	CreateInvoice(ctx context.Context, userID uuid.UUID, arg CreateInvoiceParams) (models.Invoice, error)

	// Must return apperrors.ErrInvoiceNotFound for missing or foreign owned invoices
	GetInvoice(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error)

	// Lookup by reference without owner scoping, used by the payment webhook
	GetInvoiceByReference(ctx context.Context, reference string) (models.Invoice, error)

	ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error)

	UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status string, paidAt *time.Time) (models.Invoice, error)
}

// Wallet repository interface
type WalletRepo interface {
	// Get wallet or apperrors.ErrWalletNotFound
	GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Add amount to balance, creating the wallet lazily on first credit
	AddToBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Wallet, error)

	// Subtract amount from balance
	// Must return apperrors.ErrBalanceInsufficient if balance < amount
	SubtractFromBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Wallet, error)

	CreateTransaction(ctx context.Context, walletID uuid.UUID, reference string, txType string, amount decimal.Decimal) (models.WalletTransaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID) ([]models.WalletTransaction, error)
}

// Storage fans out to concrete repositories and runs functions in db transactions
type Storage interface {
	User() UserRepo
	Client() ClientRepo
	Invoice() InvoiceRepo
	Wallet() WalletRepo

	// InTx runs fn with a Storage bound to one db transaction
	// Commits if fn returns nil, rolls back otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
