package ctdf

// RoutePoint is a (route, stop) pair departures are requested for. Each side carries the
// identifiers other systems know it by, keyed by the tag of that system.
type RoutePoint struct {
	RouteIdentifiers map[string]string
	StopIdentifiers  map[string]string
}

func NewRoutePoint(tag string, routeID string, stopID string) *RoutePoint {
	routePoint := &RoutePoint{
		RouteIdentifiers: map[string]string{},
		StopIdentifiers:  map[string]string{},
	}

	if routeID != "" {
		routePoint.RouteIdentifiers[tag] = routeID
	}
	if stopID != "" {
		routePoint.StopIdentifiers[tag] = stopID
	}

	return routePoint
}

func (r *RoutePoint) FetchRouteID(tag string) string {
	if r == nil {
		return ""
	}

	return r.RouteIdentifiers[tag]
}

func (r *RoutePoint) FetchStopID(tag string) string {
	if r == nil {
		return ""
	}

	return r.StopIdentifiers[tag]
}
