package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/handlers/middleware"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/metrics"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	AuthService    authService
	ClientService  clientService
	InvoiceService invoiceService
	WalletService  walletService

	// Talks to the payment provider for checkout and verification
	PaymentProvider paymentProvider

	// Verifies payment provider webhook signatures
	WebhookVerifier webhookVerifier

	Logger    logger.Logger
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) http.Handler {
	authMiddleware := middleware.AuthMiddleware(cfg.AuthService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	l := cfg.Logger
	m := cfg.Collector

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /signup", handleSignup(cfg.AuthService, l, m))
	apiauth.Handle("POST /signin", handleSignin(cfg.AuthService, l, m))
	apiauth.Handle("POST /signout", withAuth(handleSignout(cfg.AuthService, l, m)))
	apiauth.Handle("POST /refresh", handleTokenRefresh(cfg.AuthService, l, m))
	apiauth.Handle("POST /forgot-password", handleForgotPassword(cfg.AuthService, l, m))
	apiauth.Handle("POST /reset-password", handleResetPassword(cfg.AuthService, l, m))
	apiauth.Handle("GET /me", withAuth(handleUserMe()))

	api := http.NewServeMux()
	api.Handle("/auth/", http.StripPrefix("/auth", apiauth))

	api.Handle("POST /clients", withAuth(handleCreateClient(cfg.ClientService, l)))
	api.Handle("GET /clients", withAuth(handleListClients(cfg.ClientService, l)))
	api.Handle("GET /clients/{id}", withAuth(handleGetClient(cfg.ClientService, l)))
	api.Handle("PUT /clients/{id}", withAuth(handleUpdateClient(cfg.ClientService, l)))
	api.Handle("DELETE /clients/{id}", withAuth(handleDeleteClient(cfg.ClientService, l)))

	api.Handle("POST /invoices", withAuth(handleCreateInvoice(cfg.InvoiceService, l)))
	api.Handle("GET /invoices", withAuth(handleListInvoices(cfg.InvoiceService, l)))
	api.Handle("GET /invoices/{id}", withAuth(handleGetInvoice(cfg.InvoiceService, l)))
	api.Handle("POST /invoices/{id}/finalize", withAuth(handleFinalizeInvoice(cfg.InvoiceService, l)))
	api.Handle("POST /invoices/{id}/void", withAuth(handleVoidInvoice(cfg.InvoiceService, l)))
	api.Handle("POST /invoices/{id}/pay", withAuth(handlePayInvoice(cfg.InvoiceService, cfg.ClientService, cfg.PaymentProvider, l)))
	api.Handle("POST /invoices/{id}/verify", withAuth(handleVerifyInvoicePayment(cfg.InvoiceService, cfg.PaymentProvider, l, m)))

	api.Handle("GET /wallet", withAuth(handleWalletBalance(cfg.WalletService, l)))
	api.Handle("POST /wallet/withdraw", withAuth(handleWalletWithdraw(cfg.WalletService, l)))
	api.Handle("GET /wallet/transactions", withAuth(handleWalletTransactions(cfg.WalletService, l)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("POST /webhook/payments", handlePaymentWebhook(cfg.InvoiceService, cfg.WebhookVerifier, l, m))
	root.Handle("GET /metrics", metrics.Handler(cfg.Gatherer))

	handler := chain(root,
		middleware.LoggerMiddleware(l),
		middleware.MetricsMiddleware(m),
	)

	return handler
}

type authService interface {
	// Create user with email, full name and password
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	Signup(ctx context.Context, email string, fullName string, password string) (models.User, error)

	// Authenticate user and start a session
	// Returns the token pair and the serialized access token cookie
	// Has to return apperrors.ErrUserNotFound on bad credentials
	Signin(ctx context.Context, email string, password string) (models.TokenPair, string, error)

	// End a session: clear the stored refresh token and revoke the access token
	Signout(ctx context.Context, userID uuid.UUID, accessToken string) error

	// Issue a new access token for a valid refresh token
	// Has to return apperrors.ErrTokenNotFound for unknown or superseded tokens
	AccessFromRefresh(ctx context.Context, refreshToken string) (models.IssuedToken, error)

	// Create a one-time password reset code for the user
	ForgotPassword(ctx context.Context, email string) (string, error)

	// Consume a reset code and store the new password
	// Has to return apperrors.ErrOTPInvalid for wrong, expired or consumed codes
	ResetPassword(ctx context.Context, email string, code string, newPassword string) error

	// Read the bare access token from the Authorization header or cookie
	ReadAccessToken(r *http.Request) (string, error)

	// Authenticate the request and return the user
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type clientService interface {
	Create(ctx context.Context, userID uuid.UUID, arg repository.ClientParams) (models.Client, error)
	Get(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) (models.Client, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Client, error)
	Update(ctx context.Context, clientID uuid.UUID, userID uuid.UUID, arg repository.ClientParams) (models.Client, error)
	Delete(ctx context.Context, clientID uuid.UUID, userID uuid.UUID) error
}

type invoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, arg repository.CreateInvoiceParams) (models.Invoice, error)
	Get(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error)
	Finalize(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error)
	Void(ctx context.Context, invoiceID uuid.UUID, userID uuid.UUID) (models.Invoice, error)
	MarkPaidByReference(ctx context.Context, reference string) (models.Invoice, error)
}

type walletService interface {
	Balance(ctx context.Context, userID uuid.UUID) (models.Wallet, error)
	Debit(ctx context.Context, userID uuid.UUID, reference string, amount decimal.Decimal) (models.Wallet, error)
	Transactions(ctx context.Context, userID uuid.UUID) ([]models.WalletTransaction, error)
}

type webhookVerifier interface {
	VerifyWebhook(signature string, body []byte) bool
}

type authMetrics interface {
	RecordAuthEvent(kind string, outcome string)
}

type paymentMetrics interface {
	RecordPaymentSettled()
}
