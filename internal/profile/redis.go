package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "mirror:profile:"

// RedisStore keeps settings in Redis so they survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	zerolog.Ctx(ctx).Info().Str("addr", addr).Msg("connected to redis")

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveUsername(ctx context.Context, username string) error {
	if err := s.client.Set(ctx, RedisKey(UsernameKey), username, 0).Err(); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadUsername(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, RedisKey(UsernameKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoUsername
	}
	if err != nil {
		return "", fmt.Errorf("failed to load username: %w", err)
	}
	return v, nil
}

// RedisKey namespaces a settings key.
func RedisKey(key string) string {
	return keyPrefix + key
}
