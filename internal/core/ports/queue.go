package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChargeTask is a unit of work on the charge queue.
type ChargeTask struct {
	ChargeID uuid.UUID `json:"charge_id"`
	Attempt  int       `json:"attempt"` // 0-based delivery attempt
}

// ChargeQueue is the at-least-once delivery channel between the charge
// service (producer) and the async charge worker (consumer).
type ChargeQueue interface {
	// Enqueue pushes a charge for asynchronous processing.
	Enqueue(ctx context.Context, task ChargeTask) error
	// Dequeue blocks up to timeout for the next task. Returns nil, nil
	// when the timeout elapses with an empty queue.
	Dequeue(ctx context.Context, timeout time.Duration) (*ChargeTask, error)
}

// ChargeLock provides per-charge mutual exclusion so at-least-once
// delivery cannot run two gateway calls for the same charge concurrently.
type ChargeLock interface {
	// Acquire takes the lock for a charge. Returns false if another
	// execution currently holds it.
	Acquire(ctx context.Context, chargeID uuid.UUID, ttl time.Duration) (bool, error)
	// Release frees the lock.
	Release(ctx context.Context, chargeID uuid.UUID) error
}
