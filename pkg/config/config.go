package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/ratelimit"
	"github.com/travigo/rtproxy/pkg/responsecache"
	"github.com/travigo/rtproxy/pkg/util"
	"gopkg.in/yaml.v3"
)

const ConfigPathEnvironmentVariable = "TRAVIGO_REALTIME_PROXY_CONFIG"

const (
	defaultTimeout              = 10 * time.Second
	defaultMaxFail              = 4
	defaultResetTimeout         = 60 * time.Second
	defaultMaxRequestsBySecond  = 15
	defaultRateLimiterNamespace = ratelimit.DefaultNamespace
	defaultCacheTTL             = 30 * time.Second
	defaultCacheNamespace       = responsecache.DefaultNamespace
	defaultMemoryCacheSize      = 10000
)

const (
	RateLimiterBackendRedis = "redis"
	RateLimiterBackendLocal = "local"
	RateLimiterBackendNone  = "none"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

var ErrNoConfigPath = errors.New("no realtime proxy configuration path given")

type Config struct {
	Providers []Provider `yaml:"providers" validate:"required,min=1,unique=ID,dive"`
	Cache     Cache      `yaml:"cache"`
}

type Provider struct {
	ID               string   `yaml:"id" validate:"required"`
	ServiceURL       string   `yaml:"service_url" validate:"required,url"`
	Timeout          Duration `yaml:"timeout" validate:"gte=0"`
	Timezone         string   `yaml:"timezone" validate:"required,timezone"`
	ObjectIDTag      string   `yaml:"object_id_tag"`
	DestinationIDTag string   `yaml:"destination_id_tag"`

	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`
	RateLimiter    RateLimiter    `yaml:"rate_limiter"`
}

// Location of the provider's local times, Timezone is checked during validation
func (p Provider) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

type CircuitBreaker struct {
	// MaxFail <= 0 disables the breaker
	MaxFail      *int     `yaml:"max_fail"`
	ResetTimeout Duration `yaml:"reset_timeout" validate:"gte=0"`
}

type RateLimiter struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=redis local none"`
	// MaxRequestsBySecond of 0 denies every call
	MaxRequestsBySecond *int   `yaml:"max_requests_by_second" validate:"omitnil,gte=0"`
	Namespace           string `yaml:"namespace"`
}

// Budget is the configured requests per second, the default when unset
func (r RateLimiter) Budget() int {
	if r.MaxRequestsBySecond == nil {
		return defaultMaxRequestsBySecond
	}
	return *r.MaxRequestsBySecond
}

type Cache struct {
	Backend   string   `yaml:"backend" validate:"omitempty,oneof=redis memory"`
	TTL       Duration `yaml:"ttl" validate:"gte=0"`
	Namespace string   `yaml:"namespace"`
	Size      int      `yaml:"size" validate:"gte=0"`
}

// Path returns the configuration file to use, the explicit path winning over the environment
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	path := util.GetEnvironmentString(util.GetEnvironmentVariables(), ConfigPathEnvironmentVariable, "")
	if path == "" {
		return "", ErrNoConfigPath
	}

	return path, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Info().Str("path", path).Int("providers", len(config.Providers)).Msg("Loaded realtime proxy configuration")

	return config, nil
}

func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, err
	}

	config.setDefaults()

	return &config, nil
}

func (c *Config) setDefaults() {
	for i := range c.Providers {
		provider := &c.Providers[i]

		if provider.Timeout == 0 {
			provider.Timeout = Duration(defaultTimeout)
		}
		if provider.ObjectIDTag == "" {
			provider.ObjectIDTag = provider.ID
		}

		if provider.CircuitBreaker.MaxFail == nil {
			maxFail := defaultMaxFail
			provider.CircuitBreaker.MaxFail = &maxFail
		}
		if provider.CircuitBreaker.ResetTimeout == 0 {
			provider.CircuitBreaker.ResetTimeout = Duration(defaultResetTimeout)
		}

		if provider.RateLimiter.Backend == "" {
			provider.RateLimiter.Backend = RateLimiterBackendNone
		}
		if provider.RateLimiter.MaxRequestsBySecond == nil {
			maxRequestsBySecond := defaultMaxRequestsBySecond
			provider.RateLimiter.MaxRequestsBySecond = &maxRequestsBySecond
		}
		if provider.RateLimiter.Namespace == "" {
			provider.RateLimiter.Namespace = defaultRateLimiterNamespace
		}
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(defaultCacheTTL)
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = defaultCacheNamespace
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = defaultMemoryCacheSize
	}
}

// UsesRedis reports whether any configured backend needs the shared Redis connection
func (c *Config) UsesRedis() bool {
	if c.Cache.Backend == CacheBackendRedis {
		return true
	}

	for _, provider := range c.Providers {
		if provider.RateLimiter.Backend == RateLimiterBackendRedis {
			return true
		}
	}

	return false
}
