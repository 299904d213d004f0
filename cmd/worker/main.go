package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"balance-topup-service/config"
	"balance-topup-service/internal/adapter/gateway/stripegw"
	pgStorage "balance-topup-service/internal/adapter/storage/postgres"
	redisStorage "balance-topup-service/internal/adapter/storage/redis"
	"balance-topup-service/internal/service"
	"balance-topup-service/internal/worker"
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
		Int("max_attempts", cfg.Worker.MaxAttempts).
		Dur("reconcile_interval", cfg.Worker.ReconcileInterval).
		Msg("Starting Balance Top-up Service worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	chargeQueue := redisStorage.NewChargeQueue(rdb)
	chargeLock := redisStorage.NewChargeLock(rdb)

	// Initialize Stripe gateway
	gateway := stripegw.NewClient(cfg.Stripe.SecretKey, log)

	// Initialize services
	sigSvc := service.NewHMACSignatureService()
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
	notifier := service.NewWebhookAlertNotifier(
		sigSvc,
		&http.Client{Timeout: 10 * time.Second},
		cfg.Alerts.WebhookURL,
		cfg.Alerts.Secret,
		log,
	)

	chargeWorker := worker.NewChargeWorker(chargeQueue, chargeLock, topUpSvc, notifier, worker.ChargeWorkerConfig{
		MaxAttempts:    cfg.Worker.MaxAttempts,
		LockTTL:        cfg.Worker.LockTTL,
		DequeueTimeout: cfg.Worker.QueueTimeout,
	}, log)
	reconciler := worker.NewReconciler(chargeRepo, chargeQueue, notifier, cfg.Worker.ReconcileInterval, cfg.Worker.StaleAfter, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		chargeWorker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		reconciler.Run(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down worker...")
	wg.Wait()
	log.Info().Msg("Worker exited")
}
