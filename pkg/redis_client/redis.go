package redis_client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const connectionTimeout = 30 * time.Second

type Options struct {
	Address  string
	Password string
	Database int
}

// OptionsFromEnvironment reads the TRAVIGO_REDIS_* variables
func OptionsFromEnvironment() (Options, error) {
	env := util.GetEnvironmentVariables()

	database, err := util.GetEnvironmentInt(env, "TRAVIGO_REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Address:  util.GetEnvironmentString(env, "TRAVIGO_REDIS_ADDRESS", defaultConnectionAddress),
		Password: util.GetEnvironmentString(env, "TRAVIGO_REDIS_PASSWORD", defaultConnectionPassword),
		Database: database,
	}, nil
}

// Connect sets up the shared client from the environment
func Connect() error {
	options, err := OptionsFromEnvironment()
	if err != nil {
		return err
	}

	client, err := NewClient(context.Background(), options)
	if err != nil {
		return err
	}

	Client = client

	return nil
}

// NewClient opens a client and waits for the server to answer a ping
func NewClient(ctx context.Context, options Options) (*redis.Client, error) {
	redisOptions := &redis.Options{
		Addr: options.Address,
		DB:   options.Database,
	}
	if options.Password != "" {
		redisOptions.Password = options.Password
	}

	client := redis.NewClient(redisOptions)

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.MaxElapsedTime = connectionTimeout

	err := backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(connectBackoff, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("address", options.Address).Str("wait", wait.String()).Msg("Redis not reachable yet")
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	log.Info().Str("address", options.Address).Int("database", options.Database).Msg("Redis client setup")

	return client, nil
}
