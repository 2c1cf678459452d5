// Package store provides the resilient key-value access layer: a retry and
// reconnect policy wrapped around a raw backend. The same interface serves
// durable lookups and ephemeral caching; the caller decides how to read
// "no value after retries".
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"scoring-api/internal/common/apierrors"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/common/metrics"
)

var (
	// ErrNotFound marks a clean cache miss: the backend answered and the
	// key is absent.
	ErrNotFound = errors.New("store: key not found")

	// ErrTransient marks a failure worth a reconnect and retry. Backends
	// wrap timeouts and connection failures with it.
	ErrTransient = errors.New("store: transient failure")

	// ErrUnavailable is returned by Connect when every attempt failed.
	ErrUnavailable = errors.New("store: backend unavailable")
)

// Backend is the raw key-value interface the store wraps.
type Backend interface {
	Connect(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Store applies the retry/reconnect policy to a Backend. One Store
// instance is safe for concurrent callers: reconnects are serialized.
type Store struct {
	backend Backend
	policy  RetryPolicy
	log     logger.Logger

	mu sync.Mutex // serializes reconnect attempts
}

func New(backend Backend, policy RetryPolicy, log logger.Logger) *Store {
	return &Store{
		backend: backend,
		policy:  policy,
		log:     log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// Connect establishes the backend connection, retrying with the policy
// delay between attempts. Exhaustion is fatal and surfaces ErrUnavailable.
func (s *Store) Connect(ctx context.Context) error {
	err := s.policy.Do(ctx,
		func() error { return s.backend.Connect(ctx) },
		func(error) bool { return true },
		func(attempt int, err error) {
			metrics.StoreRetries.WithLabelValues("connect").Inc()
			s.log.WithError(err).Warn("store connect failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"delay":   s.policy.Delay.String(),
			})
			s.policy.Sleep(ctx)
		},
	)
	if err != nil {
		metrics.StoreOperations.WithLabelValues("connect", "failure").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.StoreOperations.WithLabelValues("connect", "success").Inc()
	return nil
}

// Get reads a key. Transient failures trigger a reconnect and another
// attempt; when the budget is exhausted the read degrades to a miss.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.policy.Do(ctx,
		func() error {
			v, err := s.backend.Get(ctx, key)
			if err != nil {
				return err
			}
			value = v
			return nil
		},
		isTransient,
		func(attempt int, err error) { s.retryAfter("get", attempt, err) },
	)
	switch {
	case err == nil:
		metrics.StoreOperations.WithLabelValues("get", "success").Inc()
		return value, true
	case errors.Is(err, ErrNotFound):
		metrics.StoreOperations.WithLabelValues("get", "miss").Inc()
		return "", false
	default:
		metrics.StoreOperations.WithLabelValues("get", "degraded").Inc()
		s.log.WithError(apierrors.NewStoreDegradedError("get", key)).Warn("store get degraded to miss", map[string]interface{}{
			"cause": err.Error(),
		})
		return "", false
	}
}

// Set writes a key with an optional TTL (0 means no expiry). Exhaustion
// degrades silently from the store's point of view but is reported in the
// return value so write-dependent callers can treat it as fatal.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	err := s.policy.Do(ctx,
		func() error { return s.backend.Set(ctx, key, value, ttl) },
		isTransient,
		func(attempt int, err error) { s.retryAfter("set", attempt, err) },
	)
	if err != nil {
		metrics.StoreOperations.WithLabelValues("set", "degraded").Inc()
		s.log.WithError(apierrors.NewStoreDegradedError("set", key)).Warn("store set failed", map[string]interface{}{
			"cause": err.Error(),
		})
		return false
	}
	metrics.StoreOperations.WithLabelValues("set", "success").Inc()
	return true
}

// CacheGet reads a possibly-expired cache entry.
func (s *Store) CacheGet(ctx context.Context, key string) (string, bool) {
	return s.Get(ctx, key)
}

// CacheSet writes a cache entry that expires after ttl.
func (s *Store) CacheSet(ctx context.Context, key, value string, ttl time.Duration) bool {
	return s.Set(ctx, key, value, ttl)
}

func (s *Store) retryAfter(op string, attempt int, err error) {
	metrics.StoreRetries.WithLabelValues(op).Inc()
	s.log.WithError(err).Warn("store operation failed, reconnecting", map[string]interface{}{
		"op":      op,
		"attempt": attempt,
	})
	s.reconnect()
}

// reconnect re-establishes the backend connection once, under the lock so
// concurrent callers do not race on the connection state.
func (s *Store) reconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.backend.Connect(ctx); err != nil {
		s.log.WithError(err).Warn("store reconnect failed", nil)
	}
}

// isTransient reports whether an error is a connectivity-class failure.
// Misses and semantic errors are final.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
