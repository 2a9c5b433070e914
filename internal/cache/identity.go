package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docgate/docgate/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified identities.
	identityCachePrefix = "auth:id:"
	// identityCacheTTL caps how long a verified identity may be reused
	// without re-verifying the token.
	identityCacheTTL = 5 * time.Minute
)

// CachedIdentity represents a verified identity stored in Redis.
type CachedIdentity struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IdentityTTL returns the cache TTL for an identity: the fixed cap, or
// the time remaining until the token expires, whichever is shorter.
func IdentityTTL(id *model.Identity, now time.Time) time.Duration {
	ttl := identityCacheTTL
	if remaining := id.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	return ttl
}

// GetIdentity retrieves a cached identity by token hash.
// Returns nil if not found (cache miss). Expired entries are treated
// as misses so a revoked-by-expiry token never authenticates from cache.
func (c *Cache) GetIdentity(ctx context.Context, tokenHash string) (*model.Identity, error) {
	key := identityCachePrefix + tokenHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	id := &model.Identity{
		UID:           cached.UID,
		Email:         cached.Email,
		EmailVerified: cached.EmailVerified,
		IssuedAt:      cached.IssuedAt,
		ExpiresAt:     cached.ExpiresAt,
	}
	if id.Expired(time.Now()) {
		return nil, nil
	}
	return id, nil
}

// SetIdentity caches a verified identity keyed by token hash. Entries
// whose token has already expired are not written.
func (c *Cache) SetIdentity(ctx context.Context, tokenHash string, id *model.Identity) error {
	ttl := IdentityTTL(id, time.Now())
	if ttl <= 0 {
		return nil
	}

	cached := CachedIdentity{
		UID:           id.UID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		IssuedAt:      id.IssuedAt,
		ExpiresAt:     id.ExpiresAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	key := identityCachePrefix + tokenHash
	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeleteIdentity removes a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, identityCachePrefix+tokenHash).Err()
}
