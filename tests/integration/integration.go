// Package integration wires the production router on top of a rolled back
// db transaction so tests can hit real HTTP endpoints.
package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/SmoothTransact/smooth-transact-api/internal/cache"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/metrics"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository/postgres"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/auth"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/client"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/invoice"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/payment"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/wallet"
	"github.com/SmoothTransact/smooth-transact-api/internal/testutil"
)

// Secret the webhook tests sign their payloads with
const PaymentSecret = "sk_test_secret"

type Services struct {
	AuthService    *auth.AuthService
	ClientService  *client.ClientService
	InvoiceService *invoice.InvoiceService
	WalletService  *wallet.WalletService
}

// RunTx starts the production router bound to one rolled back transaction
// and calls fn with the server url and the wired services
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	t.Helper()

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
		})
		require.NoError(t, err, "token issuer should be created without errors")

		authService, err := auth.NewService(auth.Config{OTPSecret: "otp-secret"}, issuer, cache.NewMemory(), storage.User())
		require.NoError(t, err, "auth service should be created without errors")

		services := Services{
			AuthService:    authService,
			ClientService:  client.NewService(storage.Client()),
			InvoiceService: invoice.NewService(storage),
			WalletService:  wallet.NewService(storage),
		}

		paymentClient := payment.NewClient("http://provider", PaymentSecret, nil)

		registry := prometheus.NewRegistry()
		router := handlers.NewRouter(handlers.RouterConfig{
			AuthService:     services.AuthService,
			ClientService:   services.ClientService,
			InvoiceService:  services.InvoiceService,
			WalletService:   services.WalletService,
			PaymentProvider: paymentClient,
			WebhookVerifier: paymentClient,
			Logger:          logger.NewNoOp(),
			Collector:       metrics.NewCollector(registry),
			Gatherer:        registry,
		})

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, services)
	})
}
