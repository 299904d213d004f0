package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"balance-topup-service/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// ChargeQueue implements ports.ChargeQueue as a Redis list. Producers LPUSH
// JSON-encoded tasks; workers BRPOP with a timeout so they can observe
// context cancellation between polls.
type ChargeQueue struct {
	client *goredis.Client
	key    string
}

// NewChargeQueue creates a new Redis-backed charge queue.
func NewChargeQueue(client *goredis.Client) *ChargeQueue {
	return &ChargeQueue{
		client: client,
		key:    "topup:charge_queue",
	}
}

// Enqueue pushes a charge task onto the queue.
func (q *ChargeQueue) Enqueue(ctx context.Context, task ports.ChargeTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal charge task: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis enqueue charge: %w", err)
	}
	return nil
}

// Dequeue pops the oldest charge task, blocking up to timeout.
// Returns nil, nil when the timeout elapses with no task available.
func (q *ChargeQueue) Dequeue(ctx context.Context, timeout time.Duration) (*ports.ChargeTask, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis dequeue charge: %w", err)
	}

	// BRPOP returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply length: %d", len(result))
	}

	var task ports.ChargeTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("unmarshal charge task: %w", err)
	}
	return &task, nil
}
