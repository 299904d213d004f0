package worker

import (
	"context"
	"errors"
	"time"

	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// ChargeWorker consumes charge tasks from the queue and drives them through
// the top-up service. Delivery is at-least-once; the per-charge lock plus the
// service's terminal-state guard make duplicate deliveries harmless.
type ChargeWorker struct {
	queue          ports.ChargeQueue
	lock           ports.ChargeLock
	topUpSvc       ports.TopUpService
	notifier       ports.ErrorNotifier
	maxAttempts    int
	lockTTL        time.Duration
	dequeueTimeout time.Duration
	log            zerolog.Logger
}

// ChargeWorkerConfig holds tunables for the worker loop.
type ChargeWorkerConfig struct {
	MaxAttempts    int
	LockTTL        time.Duration
	DequeueTimeout time.Duration
}

// NewChargeWorker creates a new ChargeWorker.
func NewChargeWorker(
	queue ports.ChargeQueue,
	lock ports.ChargeLock,
	topUpSvc ports.TopUpService,
	notifier ports.ErrorNotifier,
	cfg ChargeWorkerConfig,
	log zerolog.Logger,
) *ChargeWorker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 5 * time.Second
	}
	return &ChargeWorker{
		queue:          queue,
		lock:           lock,
		topUpSvc:       topUpSvc,
		notifier:       notifier,
		maxAttempts:    cfg.MaxAttempts,
		lockTTL:        cfg.LockTTL,
		dequeueTimeout: cfg.DequeueTimeout,
		log:            log,
	}
}

// Run consumes tasks until the context is cancelled.
func (w *ChargeWorker) Run(ctx context.Context) {
	w.log.Info().Int("max_attempts", w.maxAttempts).Msg("charge worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("charge worker stopping")
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.log.Error().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		w.Handle(ctx, *task)
	}
}

// Handle processes one charge task: acquire the per-charge lock, run the
// charge, classify the outcome and schedule a retry when appropriate.
func (w *ChargeWorker) Handle(ctx context.Context, task ports.ChargeTask) {
	acquired, err := w.lock.Acquire(ctx, task.ChargeID, w.lockTTL)
	if err != nil {
		w.log.Warn().Err(err).Str("charge_id", task.ChargeID.String()).Msg("lock acquire failed, re-enqueueing")
		w.retry(ctx, task)
		return
	}
	if !acquired {
		w.log.Debug().Str("charge_id", task.ChargeID.String()).Msg("charge locked by another worker, skipping")
		return
	}
	defer func() {
		if err := w.lock.Release(ctx, task.ChargeID); err != nil {
			w.log.Warn().Err(err).Str("charge_id", task.ChargeID.String()).Msg("lock release failed")
		}
	}()

	start := time.Now()
	charge, err := w.topUpSvc.ProcessCharge(ctx, task.ChargeID)
	chargeProcessingSeconds.Observe(time.Since(start).Seconds())

	if err == nil {
		chargesProcessedTotal.WithLabelValues("success").Inc()
		return
	}

	if apperror.IsChargeError(err) {
		chargesProcessedTotal.WithLabelValues("failed").Inc()
		metadata := map[string]any{
			"charge_id": task.ChargeID.String(),
			"attempt":   task.Attempt + 1,
		}
		if charge != nil {
			metadata["seller_id"] = charge.SellerID.String()
			metadata["amount"] = charge.Amount
			if charge.RefundID != nil {
				metadata["refund_id"] = charge.RefundID.String()
			}
		}
		w.notifier.Notify(ctx, err, metadata)
	} else {
		chargesProcessedTotal.WithLabelValues("error").Inc()
		w.log.Error().Err(err).Str("charge_id", task.ChargeID.String()).Msg("charge processing error")
	}

	// Settled charges are terminal, so retrying a FAILED charge is a no-op
	// read. Retries only matter for transient errors that left the charge
	// pending.
	w.retry(ctx, task)
}

func (w *ChargeWorker) retry(ctx context.Context, task ports.ChargeTask) {
	next := task.Attempt + 1
	if next >= w.maxAttempts {
		w.log.Error().
			Str("charge_id", task.ChargeID.String()).
			Int("attempts", next).
			Msg("charge attempts exhausted")
		return
	}

	if err := w.queue.Enqueue(ctx, ports.ChargeTask{ChargeID: task.ChargeID, Attempt: next}); err != nil {
		w.log.Error().Err(err).Str("charge_id", task.ChargeID.String()).Msg("failed to re-enqueue charge")
		return
	}
	chargeRetriesTotal.Inc()
}
