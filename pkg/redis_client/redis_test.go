package redis_client

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Options{Address: server.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "key", "value", 0).Err())
	value, err := server.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestNewClientGivesUpWhenContextEnds(t *testing.T) {
	server := miniredis.RunT(t)
	address := server.Addr()
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ctx, Options{Address: address})
	assert.Error(t, err)
}

func TestOptionsFromEnvironment(t *testing.T) {
	t.Setenv("TRAVIGO_REDIS_ADDRESS", "redis:6380")
	t.Setenv("TRAVIGO_REDIS_PASSWORD", "secret")
	t.Setenv("TRAVIGO_REDIS_DATABASE", "3")

	options, err := OptionsFromEnvironment()
	require.NoError(t, err)

	assert.Equal(t, Options{Address: "redis:6380", Password: "secret", Database: 3}, options)
}

func TestOptionsFromEnvironmentInvalidDatabase(t *testing.T) {
	t.Setenv("TRAVIGO_REDIS_DATABASE", "zero")

	_, err := OptionsFromEnvironment()
	assert.Error(t, err)
}
