package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultNamespace = "travigo.rate_limiter"

// Increments the window counter only while it is under budget so that denied checks
// leave it untouched. Returns 1 when admitted.
var admitScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
	return 0
end
redis.call("INCR", KEYS[1])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`)

// RedisGate is a fixed window counter shared by every process using the same Redis
type RedisGate struct {
	client    redis.Scripter
	namespace string
	budget    int
	window    time.Duration

	now func() time.Time
}

func NewRedisGate(client redis.Scripter, namespace string, requestsPerSecond int) *RedisGate {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &RedisGate{
		client:    client,
		namespace: namespace,
		budget:    requestsPerSecond,
		window:    time.Second,
		now:       time.Now,
	}
}

func (g *RedisGate) Admit(ctx context.Context, identity string) (bool, error) {
	if g.budget <= 0 {
		return false, nil
	}

	windowIndex := g.now().UnixMilli() / g.window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%d", g.namespace, identity, windowIndex)

	// The key outlives its window so instances with slightly skewed clocks still share it
	admitted, err := admitScript.Run(ctx, g.client, []string{key}, g.budget, (2 * g.window).Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return admitted == 1, nil
}
