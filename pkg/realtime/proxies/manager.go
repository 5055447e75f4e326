package proxies

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/rtproxy/pkg/circuitbreaker"
	"github.com/travigo/rtproxy/pkg/config"
	"github.com/travigo/rtproxy/pkg/ctdf"
	"github.com/travigo/rtproxy/pkg/ratelimit"
	"github.com/travigo/rtproxy/pkg/realtime/synthese"
	"github.com/travigo/rtproxy/pkg/responsecache"
)

const defaultMaxGoroutines = 50

var (
	ErrUnknownProvider = errors.New("unknown realtime provider")
	ErrRedisRequired   = errors.New("realtime proxy configuration requires a redis connection")
)

// Manager holds one proxy per configured provider
type Manager struct {
	proxies map[string]*synthese.Proxy

	MaxGoroutines int
}

// NewManager builds the proxies of cfg. redisClient may be nil when no backend uses Redis.
func NewManager(cfg *config.Config, redisClient *redis.Client) (*Manager, error) {
	if cfg.UsesRedis() && redisClient == nil {
		return nil, ErrRedisRequired
	}

	var store responsecache.Store
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		store = responsecache.NewRedisStore(redisClient)
	default:
		store = responsecache.NewMemoryStore(cfg.Cache.Size)
	}
	cache := responsecache.New[synthese.Response](store, cfg.Cache.TTL.Duration())

	manager := &Manager{
		proxies:       map[string]*synthese.Proxy{},
		MaxGoroutines: defaultMaxGoroutines,
	}

	for _, provider := range cfg.Providers {
		proxy, err := newProxy(provider, cache, cfg.Cache.Namespace, redisClient)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", provider.ID, err)
		}

		manager.proxies[provider.ID] = proxy

		log.Info().
			Str("id", provider.ID).
			Str("url", provider.ServiceURL).
			Str("ratelimiter", provider.RateLimiter.Backend).
			Str("cache", cfg.Cache.Backend).
			Msg("Registered realtime proxy")
	}

	return manager, nil
}

func newProxy(provider config.Provider, cache *responsecache.Cache[synthese.Response], cacheNamespace string, redisClient *redis.Client) (*synthese.Proxy, error) {
	location, err := provider.Location()
	if err != nil {
		return nil, err
	}

	var gate ratelimit.Gate
	switch provider.RateLimiter.Backend {
	case config.RateLimiterBackendRedis:
		gate = ratelimit.NewRedisGate(redisClient, provider.RateLimiter.Namespace, provider.RateLimiter.Budget())
	case config.RateLimiterBackendLocal:
		gate = ratelimit.NewLocalGate(provider.RateLimiter.Budget())
	default:
		gate = ratelimit.AlwaysAllow{}
	}

	var breaker circuitbreaker.Breaker = circuitbreaker.Disabled{}
	if maxFail := provider.CircuitBreaker.MaxFail; maxFail != nil && *maxFail > 0 {
		breaker = circuitbreaker.New(*maxFail, provider.CircuitBreaker.ResetTimeout.Duration())
	}

	fetcher := &synthese.Fetcher{
		RateGate:       gate,
		Breaker:        breaker,
		Cache:          cache,
		CacheNamespace: cacheNamespace,
	}

	return synthese.New(synthese.Config{
		ID:               provider.ID,
		ServiceURL:       provider.ServiceURL,
		Timeout:          provider.Timeout.Duration(),
		Location:         location,
		ObjectIDTag:      provider.ObjectIDTag,
		DestinationIDTag: provider.DestinationIDTag,
	}, fetcher), nil
}

func (m *Manager) Get(id string) (*synthese.Proxy, error) {
	proxy, ok := m.proxies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}

	return proxy, nil
}

// Statuses of every provider ordered by id
func (m *Manager) Statuses() []synthese.Status {
	statuses := make([]synthese.Status, 0, len(m.proxies))
	for _, proxy := range m.proxies {
		statuses = append(statuses, proxy.Status())
	}

	slices.SortFunc(statuses, func(a, b synthese.Status) int {
		return strings.Compare(a.ID, b.ID)
	})

	return statuses
}

type PassageRequest struct {
	ProviderID string
	Point      synthese.RoutePoint
	Count      int
	From       *time.Time
}

type PassageResult struct {
	Request  PassageRequest
	Passages []ctdf.RealTimePassage
	Error    error
}

// NextPassagesConcurrently answers every request independently, results are in request order
func (m *Manager) NextPassagesConcurrently(ctx context.Context, requests []PassageRequest) []PassageResult {
	type indexedResult struct {
		index  int
		result PassageResult
	}

	p := pool.NewWithResults[indexedResult]()
	p.WithMaxGoroutines(max(m.MaxGoroutines, 1))

	for index, request := range requests {
		p.Go(func() indexedResult {
			result := PassageResult{Request: request}

			proxy, err := m.Get(request.ProviderID)
			if err != nil {
				result.Error = err
				return indexedResult{index: index, result: result}
			}

			result.Passages, result.Error = proxy.NextPassages(ctx, request.Point, request.Count, request.From)

			return indexedResult{index: index, result: result}
		})
	}

	results := make([]PassageResult, len(requests))
	for _, indexed := range p.Wait() {
		results[indexed.index] = indexed.result
	}

	return results
}
