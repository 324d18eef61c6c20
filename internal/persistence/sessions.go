package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// SessionStore remembers revoked access token ids until they would have
// expired anyway.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisSessionStore struct {
	client redis.Cmdable
}

// NewRedisSessionStore builds a SessionStore on top of a Redis client.
func NewRedisSessionStore(client redis.Cmdable) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type noopSessionStore struct{}

// NewNoopSessionStore is used when Redis is not configured; logout then
// only discards the token client-side.
func NewNoopSessionStore() SessionStore {
	return noopSessionStore{}
}

func (noopSessionStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (noopSessionStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
