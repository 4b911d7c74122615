package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SmoothTransact/smooth-transact-api/internal/cache"
	"github.com/SmoothTransact/smooth-transact-api/internal/db"
	"github.com/SmoothTransact/smooth-transact-api/internal/handlers"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/metrics"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository/postgres"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/auth"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/client"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/invoice"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/payment"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/wallet"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	// Released when Run returns
	closeFns []func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to redis for one-time codes and the revoked token set
	redisCache, err := cache.NewRedis(ctx, c.RedisDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token issuer. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		Environment: c.Environment,
		OTPSecret:   c.OTPSecret,
	}, issuer, redisCache, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	paymentClient := payment.NewClient(c.PaymentAddr, c.PaymentSecretKey, logger)

	registry := prometheus.NewRegistry()

	mux := handlers.NewRouter(handlers.RouterConfig{
		AuthService:     authService,
		ClientService:   client.NewService(storage.Client()),
		InvoiceService:  invoice.NewService(storage),
		WalletService:   wallet.NewService(storage),
		PaymentProvider: paymentClient,
		WebhookVerifier: paymentClient,
		Logger:          logger,
		Collector:       metrics.NewCollector(registry),
		Gatherer:        registry,
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		closeFns: []func(){
			pool.Close,
			func() {
				if err := redisCache.Close(); err != nil {
					logger.Error("error while closing redis client", "error", err)
				}
			},
		},
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	s.close()

	return err
}

func (s *ServerApp) close() {
	for _, fn := range s.closeFns {
		fn()
	}
}
