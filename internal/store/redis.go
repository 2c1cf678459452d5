package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"scoring-api/internal/common/config"
	"scoring-api/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements Backend over the shared redis client wrapper.
// Connect replaces the client, so reads hold a lock around the pointer.
type RedisBackend struct {
	cfg config.RedisConfig

	mu     sync.RWMutex
	client *database.RedisClient
}

func NewRedisBackend(cfg config.RedisConfig) *RedisBackend {
	return &RedisBackend{cfg: cfg}
}

// Connect builds a fresh client and verifies it with a ping. The previous
// client, if any, is closed only after the replacement is live.
func (b *RedisBackend) Connect(ctx context.Context) error {
	client, err := database.NewRedis(b.cfg)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return classifyRedisError(err)
	}

	b.mu.Lock()
	old := b.client
	b.client = client
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	client := b.current()
	if client == nil {
		return "", fmt.Errorf("%w: not connected", ErrTransient)
	}
	value, err := client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", classifyRedisError(err)
	}
	return value, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	client := b.current()
	if client == nil {
		return fmt.Errorf("%w: not connected", ErrTransient)
	}
	if err := client.Set(ctx, key, value, ttl); err != nil {
		return classifyRedisError(err)
	}
	return nil
}

// Close releases the current client.
func (b *RedisBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func (b *RedisBackend) current() *database.RedisClient {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.client
}

// classifyRedisError wraps connectivity-class redis failures with
// ErrTransient so the store retries them; semantic errors pass through.
func classifyRedisError(err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, redis.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}
