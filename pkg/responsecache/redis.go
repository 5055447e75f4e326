package responsecache

import (
	"context"
	"errors"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares entries between every instance connected to the same Redis
type RedisStore struct {
	cache *cache.Cache[string]
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		cache: cache.New[string](redisstore.NewRedis(client)),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if isRedisMiss(err) {
			return "", errNotFound
		}
		return "", err
	}

	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.cache.Set(ctx, key, value, store.WithExpiration(ttl))
}

func isRedisMiss(err error) bool {
	var notFound *store.NotFound

	return errors.As(err, &notFound) || errors.Is(err, store.NotFound{}) || errors.Is(err, redis.Nil)
}
