package connection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "walletcore:connection:session"

// RedisStore is a redis-backed Store. The record's TTL follows the session
// expiry, so an expired session disappears on its own.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store over the given redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save persists the session with a TTL matching its expiry.
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refusing to save an already-expired session")
	}

	if err := s.client.Set(ctx, redisSessionKey, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save session")
	}

	return nil
}

// Load returns the stored session or (nil, nil) when none exists.
func (s *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := s.client.Get(ctx, redisSessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load session")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	return &session, nil
}

// Clear removes the stored session.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisSessionKey).Err(); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	return nil
}
