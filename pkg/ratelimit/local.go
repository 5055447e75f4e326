package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LocalGate is a token bucket per identity held in process memory. It does not coordinate
// between instances and is meant for deployments without Redis.
type LocalGate struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex

	limit rate.Limit
	burst int
}

func NewLocalGate(requestsPerSecond int) *LocalGate {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = 0
	}

	return &LocalGate{
		limiters: map[string]*rate.Limiter{},
		limit:    limit,
		burst:    requestsPerSecond,
	}
}

func (g *LocalGate) Admit(_ context.Context, identity string) (bool, error) {
	return g.getLimiter(identity).Allow(), nil
}

func (g *LocalGate) getLimiter(identity string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	limiter, exists := g.limiters[identity]
	if !exists {
		limiter = rate.NewLimiter(g.limit, g.burst)
		g.limiters[identity] = limiter
	}

	return limiter
}
