package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance-topup-service/config"
	"balance-topup-service/internal/adapter/gateway/stripegw"
	httpHandler "balance-topup-service/internal/adapter/http/handler"
	pgStorage "balance-topup-service/internal/adapter/storage/postgres"
	redisStorage "balance-topup-service/internal/adapter/storage/redis"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/internal/service"
	"balance-topup-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Balance Top-up Service API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	sellerRepo := pgStorage.NewSellerRepo(pool)
	methodRepo := pgStorage.NewPaymentMethodRepo(pool)
	chargeRepo := pgStorage.NewTopUpRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	chargeQueue := redisStorage.NewChargeQueue(rdb)
	flagStore := redisStorage.NewFlagStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize Stripe gateway
	gateway := stripegw.NewClient(cfg.Stripe.SecretKey, log)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(sellerRepo, hashSvc, tokenSvc, gateway)
	registrySvc := service.NewRegistryService(methodRepo, chargeRepo, sellerRepo, gateway, transactor, log)
	topUpSvc := service.NewTopUpService(
		chargeRepo,
		methodRepo,
		sellerRepo,
		ledgerRepo,
		idempotencyRepo,
		idempotencyCache,
		gateway,
		chargeQueue,
		transactor,
		log,
	)
	balanceSvc := service.NewBalanceService(ledgerRepo, topUpSvc, flagStore, log)
	reportingSvc := service.NewReportingService(chargeRepo, ledgerRepo, sellerRepo)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:            authSvc,
		Registry:           registrySvc,
		TopUpSvc:           topUpSvc,
		BalanceSvc:         balanceSvc,
		ReportingSvc:       reportingSvc,
		SigSvc:             sigSvc,
		NonceStore:         nonceStore,
		TokenSvc:           tokenSvc,
		InternalAuthSecret: cfg.InternalAuth.Secret,
		RateLimitStore:     rateLimitStore,
		HealthCheckers:     []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:           auditSvc,
		Logger:             log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
