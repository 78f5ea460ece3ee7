package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// RedisStore persists contexts as JSON values keyed by user id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logx.Logger
}

const redisKeyPrefix = "session:"

// NewRedisStore connects to Redis at addr and verifies the connection.
// A zero ttl keeps sessions until explicitly deleted.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logx.NewLogger("session-redis"),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Context, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		sc := NewContext("")
		if putErr := s.Put(ctx, userID, sc); putErr != nil {
			s.logger.Warn("persist default context for %s: %v", userID, putErr)
		}
		return sc, nil
	}
	if err != nil {
		return Context{}, fmt.Errorf("redis get %s: %w", userID, err)
	}

	var sc Context
	if err := json.Unmarshal(data, &sc); err != nil {
		// A corrupt blob should not strand the user; start over.
		s.logger.Warn("corrupt session for %s, resetting: %v", userID, err)
		return NewContext(""), nil
	}
	return sc, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, sc Context) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	sc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+userID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", userID, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
