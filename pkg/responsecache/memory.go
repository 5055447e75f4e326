package responsecache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"
)

const defaultMemoryStoreSize = 10000

// MemoryStore keeps entries in process memory, evicting least recently used entries once
// full. Used when no Redis is configured.
type MemoryStore struct {
	cache gcache.Cache
}

func NewMemoryStore(size int) *MemoryStore {
	return newMemoryStore(size, gcache.NewRealClock())
}

func newMemoryStore(size int, clock gcache.Clock) *MemoryStore {
	if size <= 0 {
		size = defaultMemoryStoreSize
	}

	return &MemoryStore{
		cache: gcache.New(size).LRU().Clock(clock).Build(),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	value, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, gcache.KeyNotFoundError) {
			return "", errNotFound
		}
		return "", err
	}

	return value.(string), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	return s.cache.SetWithExpire(key, value, ttl)
}
