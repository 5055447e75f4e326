package synthese

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/circuitbreaker"
	"github.com/travigo/rtproxy/pkg/ctdf"
	"github.com/travigo/rtproxy/pkg/util"
)

const maxLoggedBodyLength = 2000

type Config struct {
	ID         string
	ServiceURL string
	Timeout    time.Duration
	Location   *time.Location

	// ObjectIDTag selects which identifiers of a route point belong to this provider
	ObjectIDTag      string
	DestinationIDTag string
}

// Proxy answers next passage requests from a Synthese realtime service
type Proxy struct {
	config Config

	urls    *URLBuilder
	fetcher *Fetcher
	parser  *Parser
}

func New(config Config, fetcher *Fetcher) *Proxy {
	if config.ObjectIDTag == "" {
		config.ObjectIDTag = config.ID
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	fetcher.ProviderID = config.ID
	if fetcher.HTTPClient == nil {
		fetcher.HTTPClient = NewHTTPClient(config.Timeout)
	}

	return &Proxy{
		config: config,
		urls: &URLBuilder{
			ServiceURL:  config.ServiceURL,
			ObjectIDTag: config.ObjectIDTag,
			Location:    config.Location,
		},
		fetcher: fetcher,
		parser: &Parser{
			ProviderID: config.ID,
			Location:   config.Location,
		},
	}
}

func (p *Proxy) ID() string {
	return p.config.ID
}

func (p *Proxy) ObjectIDTag() string {
	return p.config.ObjectIDTag
}

// NextPassages returns the realtime passages for point, or nil when there is no realtime
// data and the base schedule should be used. count <= 0 and a nil from are not sent.
// Only an unreadable feed document is reported as an error.
func (p *Proxy) NextPassages(ctx context.Context, point RoutePoint, count int, from *time.Time) ([]ctdf.RealTimePassage, error) {
	// Feed journeys without a route are never matched, so neither is a point without one
	if point.FetchRouteID(p.config.ObjectIDTag) == "" {
		log.Debug().
			Str("id", p.config.ID).
			Str("stop", point.FetchStopID(p.config.ObjectIDTag)).
			Msg("Missing realtime route identifier")
		return nil, nil
	}

	url, ok := p.urls.Build(point, count, from)
	if !ok {
		return nil, nil
	}

	log.Debug().Str("id", p.config.ID).Str("url", url).Msg("Calling realtime service")

	response := p.fetcher.Fetch(ctx, url)
	if !response.HasData() {
		return nil, nil
	}

	log.Debug().
		Str("id", p.config.ID).
		Str("body", util.TrimString(string(response.Body), maxLoggedBodyLength)).
		Msg("Realtime service response")

	passagesByRoutePoint, err := p.parser.Parse(response.Body)
	if err != nil {
		return nil, err
	}

	// nil when the feed knows nothing about this route point
	return passagesByRoutePoint[routePointKeyFor(point, p.config.ObjectIDTag)], nil
}

type Status struct {
	ID             string               `json:"id"`
	Timeout        float64              `json:"timeout"`
	CircuitBreaker CircuitBreakerStatus `json:"circuit_breaker"`
}

type CircuitBreakerStatus struct {
	CurrentState string  `json:"current_state"`
	FailCounter  int     `json:"fail_counter"`
	ResetTimeout float64 `json:"reset_timeout"`
}

// Status is a read only snapshot, durations are in seconds
func (p *Proxy) Status() Status {
	breakerStatus := p.breaker().Status()

	return Status{
		ID:      p.config.ID,
		Timeout: p.config.Timeout.Seconds(),
		CircuitBreaker: CircuitBreakerStatus{
			CurrentState: breakerStatus.State.String(),
			FailCounter:  breakerStatus.FailCounter,
			ResetTimeout: breakerStatus.ResetTimeout.Seconds(),
		},
	}
}

func (p *Proxy) breaker() circuitbreaker.Breaker {
	return p.fetcher.breaker()
}
