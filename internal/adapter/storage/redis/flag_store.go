package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// FlagStore implements ports.FeatureFlags using Redis sets. A flag is on
// for everyone when its member set contains "all", or for individual
// sellers by UUID. Operators flip flags with SADD/SREM at runtime.
type FlagStore struct {
	client *goredis.Client
	prefix string
}

// NewFlagStore creates a new Redis-backed feature flag store.
func NewFlagStore(client *goredis.Client) *FlagStore {
	return &FlagStore{
		client: client,
		prefix: "feature:",
	}
}

// Enabled reports whether the flag is on for the given seller.
func (s *FlagStore) Enabled(ctx context.Context, flag string, sellerID uuid.UUID) (bool, error) {
	key := s.prefix + flag

	results, err := s.client.SMIsMember(ctx, key, "all", sellerID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis feature flag check: %w", err)
	}

	for _, member := range results {
		if member {
			return true, nil
		}
	}
	return false, nil
}
