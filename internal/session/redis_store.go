package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

const sessionKeyPrefix = "session:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each session as a JSON value with a redis TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, identity types.Identity) (string, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	token := newToken()
	if err := s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", types.NewStoreError("create session", err)
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (types.Identity, error) {
	if token == "" {
		return types.Identity{}, types.ErrSessionNotFound
	}
	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Identity{}, types.ErrSessionNotFound
		}
		return types.Identity{}, types.NewStoreError("get session", err)
	}
	var identity types.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return types.Identity{}, types.ErrSessionNotFound
	}
	return identity, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return types.NewStoreError("destroy session", err)
	}
	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
