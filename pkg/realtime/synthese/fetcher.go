package synthese

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/circuitbreaker"
	"github.com/travigo/rtproxy/pkg/ratelimit"
	"github.com/travigo/rtproxy/pkg/responsecache"
)

const userAgent = "travigo-rtproxy"

// Fetcher performs the feed call behind the rate gate and circuit breaker, memoizing the
// outcome in the response cache
type Fetcher struct {
	ProviderID string

	HTTPClient *http.Client
	RateGate   ratelimit.Gate
	Breaker    circuitbreaker.Breaker

	Cache          *responsecache.Cache[Response]
	CacheNamespace string
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// Fetch never fails: any problem degrades to a Response without data
func (f *Fetcher) Fetch(ctx context.Context, url string) Response {
	if f.Cache == nil {
		return f.call(ctx, url)
	}

	key := responsecache.Key(f.CacheNamespace, f.ProviderID, url)
	response, err := f.Cache.GetOrCompute(ctx, key, func(ctx context.Context) Response {
		return f.call(ctx, url)
	}, Response.Cacheable)

	if err != nil {
		log.Error().Err(err).Str("id", f.ProviderID).Str("url", url).Msg("Realtime response cache error, using base schedule")
		return Response{Outcome: OutcomeStoreUnavailable}
	}

	return response
}

func (f *Fetcher) call(ctx context.Context, url string) Response {
	logger := log.With().Str("id", f.ProviderID).Str("url", url).Logger()

	admitted, err := f.rateGate().Admit(ctx, f.ProviderID)
	if err != nil {
		logger.Error().Err(err).Msg("Realtime rate limiter store error, using base schedule")
		return Response{Outcome: OutcomeStoreUnavailable}
	}
	if !admitted {
		logger.Debug().Msg("Realtime service rate limit reached, using base schedule")
		return Response{Outcome: OutcomeRateLimited}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid realtime service request")
		return Response{Outcome: OutcomeTransportError}
	}
	request.Header.Set("User-Agent", userAgent)

	var response Response
	err = f.breaker().Call(ctx, func(ctx context.Context) error {
		httpResponse, err := f.httpClient().Do(request)
		if err != nil {
			return err
		}
		defer httpResponse.Body.Close()

		body, err := io.ReadAll(httpResponse.Body)
		if err != nil {
			return err
		}

		response = Response{
			Outcome:    OutcomeSuccess,
			StatusCode: httpResponse.StatusCode,
			Body:       body,
		}

		return nil
	})

	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		logger.Error().Err(err).Msg("Realtime service dead, using base schedule")
		return Response{Outcome: OutcomeCircuitOpen}
	case err != nil && ctx.Err() != nil:
		logger.Debug().Err(err).Msg("Realtime request abandoned by caller, using base schedule")
		return Response{Outcome: OutcomeCanceled}
	case isTimeout(err):
		logger.Error().Err(err).Msg("Realtime service timeout, using base schedule")
		return Response{Outcome: OutcomeTimeout}
	case err != nil:
		logger.Error().Err(err).Msg("Realtime service error, using base schedule")
		return Response{Outcome: OutcomeTransportError}
	}

	if response.StatusCode != http.StatusOK {
		logger.Error().Int("status", response.StatusCode).Msg("Realtime service unavailable, impossible to query")
		return Response{Outcome: OutcomeBadStatus, StatusCode: response.StatusCode}
	}

	if len(response.Body) == 0 {
		logger.Error().Msg("Realtime service returned an empty body, using base schedule")
		return Response{Outcome: OutcomeEmptyBody, StatusCode: response.StatusCode}
	}

	return response
}

func (f *Fetcher) rateGate() ratelimit.Gate {
	if f.RateGate == nil {
		return ratelimit.AlwaysAllow{}
	}
	return f.RateGate
}

func (f *Fetcher) breaker() circuitbreaker.Breaker {
	if f.Breaker == nil {
		return circuitbreaker.Disabled{}
	}
	return f.Breaker
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTPClient == nil {
		return http.DefaultClient
	}
	return f.HTTPClient
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
