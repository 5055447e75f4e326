package synthese

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/util"
)

const requestDateFormat = "2006-01-02 15:04"

type URLBuilder struct {
	ServiceURL  string
	ObjectIDTag string
	Location    *time.Location
}

// Build returns the departures query for the stop of point. It reports false when the
// stop has no identifier for this provider, in which case no realtime data can exist.
func (b *URLBuilder) Build(point RoutePoint, count int, from *time.Time) (string, bool) {
	stopID := point.FetchStopID(b.ObjectIDTag)

	if stopID == "" {
		log.Debug().
			Str("tag", b.ObjectIDTag).
			Str("route", point.FetchRouteID(b.ObjectIDTag)).
			Msg("Missing realtime stop identifier")
		return "", false
	}

	var query strings.Builder
	fmt.Fprintf(&query, "%s?SERVICE=tdg&roid=%s", b.ServiceURL, url.QueryEscape(stopID))

	if count > 0 {
		fmt.Fprintf(&query, "&rn=%d", count)
	}

	if from != nil {
		localDateTime := util.UTCToLocal(*from, b.Location)
		fmt.Fprintf(&query, "&date=%s", url.QueryEscape(localDateTime.Format(requestDateFormat)))
	}

	return query.String(), true
}
