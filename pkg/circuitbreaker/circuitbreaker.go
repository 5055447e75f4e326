// Package circuitbreaker isolates callers from a failing dependency.
//
// A breaker starts Closed and lets calls through. After FailureThreshold consecutive
// failures it opens and rejects calls with ErrOpen without running them. Once
// ResetTimeout has elapsed a single trial call runs (HalfOpen): success closes
// the breaker, failure opens it again with a fresh timeout.
//
// Calls whose context ended before they returned count as neither success nor failure,
// and outcomes of calls started before the last state change are ignored.
package circuitbreaker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultResetTimeout = 60 * time.Second

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func stateFromGoBreaker(state gobreaker.State) State {
	switch state {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

type Status struct {
	State        State
	FailCounter  int
	ResetTimeout time.Duration
}

type Breaker interface {
	// Call runs fn unless the breaker is open, recording its outcome
	Call(ctx context.Context, fn func(context.Context) error) error
	Status() Status
}

// CircuitBreaker counts consecutive failures on top of gobreaker
type CircuitBreaker struct {
	breaker      *gobreaker.CircuitBreaker[struct{}]
	resetTimeout time.Duration

	// gobreaker clears its counts on every state change, the failures that opened the
	// breaker are kept here for Status
	tripFailures atomic.Int64
}

func New(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if resetTimeout <= 0 {
		resetTimeout = defaultResetTimeout
	}

	b := &CircuitBreaker{
		resetTimeout: resetTimeout,
	}

	b.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		MaxRequests: 1,
		Timeout:     resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if int(counts.ConsecutiveFailures) < failureThreshold {
				return false
			}

			b.tripFailures.Store(int64(counts.ConsecutiveFailures))
			return true
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			switch {
			case to == gobreaker.StateClosed:
				b.tripFailures.Store(0)
			case from == gobreaker.StateHalfOpen && to == gobreaker.StateOpen:
				b.tripFailures.Add(1)
			}
		},
		IsExcluded: func(err error) bool {
			var abandoned abandonedCallError
			return errors.As(err, &abandoned)
		},
	})

	return b
}

// abandonedCallError marks the error of a call whose caller gave up on it
type abandonedCallError struct {
	err error
}

func (e abandonedCallError) Error() string {
	return e.err.Error()
}

func (e abandonedCallError) Unwrap() error {
	return e.err
}

func (b *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			return struct{}{}, abandonedCallError{err: err}
		}

		return struct{}{}, err
	})

	var abandoned abandonedCallError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ErrOpen
	case errors.As(err, &abandoned):
		return abandoned.err
	}

	return err
}

func (b *CircuitBreaker) Status() Status {
	state := stateFromGoBreaker(b.breaker.State())

	failures := int(b.breaker.Counts().ConsecutiveFailures)
	if state != StateClosed {
		failures = int(b.tripFailures.Load())
	}

	return Status{
		State:        state,
		FailCounter:  failures,
		ResetTimeout: b.resetTimeout,
	}
}

// Disabled never opens
type Disabled struct{}

func (Disabled) Call(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (Disabled) Status() Status {
	return Status{State: StateClosed}
}
