package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "cryptosift:snapshot"

// SnapshotCache implements domain.SnapshotCache as a single TTL'd JSON blob.
// Closely spaced runs inside the TTL reuse the cached snapshot instead of
// refetching every source.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// Get returns the cached snapshot, or domain.ErrCacheMiss when none exists
// or the TTL has lapsed.
func (sc *SnapshotCache) Get(ctx context.Context) (domain.MarketSnapshot, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MarketSnapshot{}, domain.ErrCacheMiss
	}
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var snap domain.MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}

	return snap, nil
}

// Set stores the snapshot with the given TTL.
func (sc *SnapshotCache) Set(ctx context.Context, snap domain.MarketSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}

	if err := sc.rdb.Set(ctx, snapshotKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}

	return nil
}
