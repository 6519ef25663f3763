package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings, so a bad address fails at startup.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisResponseStore shares idempotency state between instances.
type RedisResponseStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisResponseStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisResponseStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisResponseStore{client: client, keyPrefix: keyPrefix, ttl: ttlOrDefault(ttl)}
}

func (s *RedisResponseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return body, true, nil
}

// Put uses SETNX so concurrent first requests cannot overwrite each other.
func (s *RedisResponseStore) Put(ctx context.Context, key string, body []byte) error {
	if err := s.client.SetNX(ctx, s.keyPrefix+key, body, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

var _ ResponseStore = (*RedisResponseStore)(nil)
