package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for session snapshots.
	sessionCachePrefix = "session:ctx:"
	// sessionCacheMaxTTL caps how long a snapshot may outlive a profile change.
	sessionCacheMaxTTL = 5 * time.Minute
)

// GetSession retrieves a cached session snapshot by cache key.
// Returns nil on a miss; a corrupted entry is treated as a miss.
func (c *Cache) GetSession(ctx context.Context, cacheKey string) (*model.CachedSession, error) {
	key := sessionCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached model.CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetSession caches a session snapshot.
// The TTL never extends past the session's own expiry.
func (c *Cache) SetSession(ctx context.Context, cacheKey string, cached *model.CachedSession) error {
	key := sessionCachePrefix + cacheKey

	ttl := sessionCacheTTL(cached.Expiry(), time.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeleteSession removes a cached session snapshot.
// Used when a session is revoked.
func (c *Cache) DeleteSession(ctx context.Context, cacheKey string) error {
	key := sessionCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}

// sessionCacheTTL picks the snapshot TTL: the cap, or the time left until
// session expiry if that is sooner.
func sessionCacheTTL(expiresAt, now time.Time) time.Duration {
	remaining := expiresAt.Sub(now)
	if remaining < sessionCacheMaxTTL {
		return remaining
	}
	return sessionCacheMaxTTL
}
