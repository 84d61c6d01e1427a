package auth

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// TokenRevoker tracks revoked token IDs until their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenylist revokes tokens by writing their jti to Redis with a TTL
// equal to the token's remaining lifetime, so entries expire on their own.
// This is session scratch state, not durable storage.
type RedisDenylist struct {
	R      *redis.Client
	Prefix string
}

func (d RedisDenylist) key(tokenID string) string {
	prefix := d.Prefix
	if prefix == "" {
		prefix = "auth:revoked:"
	}
	return prefix + tokenID
}

// Revoke marks the token ID as revoked for the given duration.
func (d RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.R.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token ID is on the denylist.
func (d RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.R.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
