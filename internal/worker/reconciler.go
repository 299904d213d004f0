package worker

import (
	"context"
	"fmt"
	"time"

	"balance-topup-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// Reconciler periodically sweeps the charge table for work the queue lost.
// Pending charges older than the stale threshold are re-enqueued, and failed
// charges that were backing a refund are surfaced to the alert channel so
// someone can follow up with the seller.
type Reconciler struct {
	chargeRepo ports.TopUpChargeRepository
	queue      ports.ChargeQueue
	notifier   ports.ErrorNotifier
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	log        zerolog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	chargeRepo ports.TopUpChargeRepository,
	queue ports.ChargeQueue,
	notifier ports.ErrorNotifier,
	interval, staleAfter time.Duration,
	log zerolog.Logger,
) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &Reconciler{
		chargeRepo: chargeRepo,
		queue:      queue,
		notifier:   notifier,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  100,
		log:        log,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	r.log.Info().
		Dur("interval", r.interval).
		Dur("stale_after", r.staleAfter).
		Msg("reconciler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciler stopping")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass.
func (r *Reconciler) Sweep(ctx context.Context) {
	r.requeueStale(ctx)
	r.reportFailedRefundCharges(ctx)
}

func (r *Reconciler) requeueStale(ctx context.Context) {
	cutoff := time.Now().Add(-r.staleAfter)
	stale, err := r.chargeRepo.ListStalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to list stale pending charges")
		return
	}

	for _, charge := range stale {
		if err := r.queue.Enqueue(ctx, ports.ChargeTask{ChargeID: charge.ID}); err != nil {
			r.log.Error().Err(err).Str("charge_id", charge.ID.String()).Msg("failed to re-enqueue stale charge")
			continue
		}
		staleChargesRequeuedTotal.Inc()
		r.log.Info().
			Str("charge_id", charge.ID.String()).
			Str("seller_id", charge.SellerID.String()).
			Time("created_at", charge.CreatedAt).
			Msg("re-enqueued stale pending charge")
	}
}

func (r *Reconciler) reportFailedRefundCharges(ctx context.Context) {
	since := time.Now().Add(-r.interval)
	failed, err := r.chargeRepo.ListFailedLinkedToRefunds(ctx, since)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to list failed refund-linked charges")
		return
	}

	for _, charge := range failed {
		metadata := map[string]any{
			"charge_id": charge.ID.String(),
			"seller_id": charge.SellerID.String(),
			"amount":    charge.Amount,
		}
		if charge.RefundID != nil {
			metadata["refund_id"] = charge.RefundID.String()
		}
		reason := "unknown"
		if charge.ErrorMessage != nil {
			reason = *charge.ErrorMessage
		}
		r.notifier.Notify(ctx, fmt.Errorf("refund-linked top-up failed: %s", reason), metadata)
	}
}
