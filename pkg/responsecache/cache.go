// Package responsecache memoizes upstream responses for a fixed TTL in a store that can
// be shared between process instances.
package responsecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultNamespace = "travigo.realtime_proxy"

var (
	// ErrStoreUnavailable wraps failures of the backing store
	ErrStoreUnavailable = errors.New("response cache store unavailable")

	errNotFound = errors.New("not found in response cache")
)

type Store interface {
	// Get returns errNotFound when there is no live entry for key
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Key scopes a URL by the provider it was requested for, so that two providers pointing at
// the same URL never share entries
func Key(namespace string, providerID string, url string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return fmt.Sprintf("%s:%s:%s", namespace, providerID, url)
}

type Cache[T any] struct {
	store Store
	ttl   time.Duration
}

func New[T any](store Store, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		store: store,
		ttl:   ttl,
	}
}

func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns the live entry for key, or runs compute and stores its result when
// cacheable accepts it. An error is only returned when the store could not be read.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) T, cacheable func(T) bool) (T, error) {
	var value T

	encoded, err := c.store.Get(ctx, key)
	if err == nil {
		if err := json.Unmarshal([]byte(encoded), &value); err == nil {
			return value, nil
		} else {
			log.Error().Err(err).Str("key", key).Msg("Failed to decode cached response, recomputing")
		}
	} else if !errors.Is(err, errNotFound) {
		return value, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	value = compute(ctx)

	if cacheable != nil && !cacheable(value) {
		return value, nil
	}

	encodedValue, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode response for cache")
		return value, nil
	}

	if err := c.store.Set(ctx, key, string(encodedValue), c.ttl); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store response in cache")
	}

	return value, nil
}
