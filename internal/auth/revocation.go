package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationList keeps signed-out tokens in Redis until they would
// have expired anyway.
type RedisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func revokedKey(token string) string {
	return fmt.Sprintf("session:revoked:%s", hashToken(token))
}

// Revoke marks token as revoked until expiresAt. Already expired tokens are
// ignored.
func (r *RedisRevocationList) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}

	return nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
