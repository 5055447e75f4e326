package ctdf

import "time"

// RealTimePassage is a single departure prediction returned by a realtime feed.
// Time is always in UTC.
type RealTimePassage struct {
	Time       time.Time `json:"time" groups:"basic,detailed"`
	IsRealTime bool      `json:"is_real_time" groups:"basic,detailed"`

	RouteRef string `json:"route_ref,omitempty" groups:"detailed"`
	StopRef  string `json:"stop_ref,omitempty" groups:"detailed"`
}

func NewRealTimePassage(instant time.Time, isRealTime bool) RealTimePassage {
	return RealTimePassage{
		Time:       instant.UTC(),
		IsRealTime: isRealTime,
	}
}
