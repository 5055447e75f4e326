package synthese

import "fmt"

// RoutePoint exposes the provider specific identifiers of a (route, stop) pair
type RoutePoint interface {
	FetchRouteID(tag string) string
	FetchStopID(tag string) string
}

// RoutePointKey joins a requested route point to the journeys of a feed document
type RoutePointKey struct {
	RouteID string
	StopID  string
}

func (k RoutePointKey) String() string {
	return fmt.Sprintf("RoutePoint(%s, %s)", k.RouteID, k.StopID)
}

func routePointKeyFor(point RoutePoint, tag string) RoutePointKey {
	return RoutePointKey{
		RouteID: point.FetchRouteID(tag),
		StopID:  point.FetchStopID(tag),
	}
}
