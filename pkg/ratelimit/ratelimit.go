// Package ratelimit provides non-blocking admission gates placed in front of calls to
// external feeds. Every gate is scoped by an identity, normally the provider id.
package ratelimit

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the shared counter store could not be reached.
// Callers must not read it as either an admission or a denial.
var ErrStoreUnavailable = errors.New("rate limiter store unavailable")

type Gate interface {
	// Admit reports whether one more call for identity fits in the current budget
	Admit(ctx context.Context, identity string) (bool, error)
}

// AlwaysAllow is used when no limiting is configured
type AlwaysAllow struct{}

func (AlwaysAllow) Admit(context.Context, string) (bool, error) {
	return true, nil
}
