package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chargesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topup_charges_processed_total",
		Help: "Top-up charges processed by the worker, partitioned by outcome.",
	}, []string{"status"})

	chargeRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topup_charge_retries_total",
		Help: "Charge tasks re-enqueued after a failed processing attempt.",
	})

	chargeProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "topup_charge_processing_seconds",
		Help:    "Wall time spent processing a single charge task.",
		Buckets: prometheus.DefBuckets,
	})

	staleChargesRequeuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topup_stale_charges_requeued_total",
		Help: "Pending charges re-enqueued by the reconciler sweep.",
	})
)
