package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ChargeLock implements ports.ChargeLock using Redis SET NX. The lock keeps
// two workers from running the same charge concurrently; the TTL bounds how
// long a crashed worker can hold a charge hostage.
type ChargeLock struct {
	client *goredis.Client
	prefix string
}

// NewChargeLock creates a new Redis-backed charge lock.
func NewChargeLock(client *goredis.Client) *ChargeLock {
	return &ChargeLock{
		client: client,
		prefix: "topup:charge_lock:",
	}
}

// Acquire attempts to take the per-charge lock. Returns false if another
// worker holds it.
func (l *ChargeLock) Acquire(ctx context.Context, chargeID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+chargeID.String(), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis charge lock acquire: %w", err)
	}
	return ok, nil
}

// Release frees the per-charge lock.
func (l *ChargeLock) Release(ctx context.Context, chargeID uuid.UUID) error {
	if err := l.client.Del(ctx, l.prefix+chargeID.String()).Err(); err != nil {
		return fmt.Errorf("redis charge lock release: %w", err)
	}
	return nil
}
