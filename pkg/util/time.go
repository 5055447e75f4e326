package util

import (
	"time"
)

// LocalToUTC interprets the wall clock of localTime (its location is ignored) in loc
// and returns the matching UTC instant.
//
// Wall clocks that exist twice (fall back overlap) resolve to the standard time offset.
// Wall clocks that do not exist (spring forward gap) resolve to the transition instant,
// keeping the conversion monotonic. The conversion never fails.
func LocalToUTC(localTime time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	naive := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		localTime.Hour(), localTime.Minute(), localTime.Second(), localTime.Nanosecond(),
		time.UTC,
	)

	type candidate struct {
		utc   time.Time
		isDST bool
		valid bool
	}

	var candidates []candidate
	for _, sample := range []time.Time{naive.Add(-12 * time.Hour), naive.Add(12 * time.Hour)} {
		sampleLocal := sample.In(loc)
		_, offset := sampleLocal.Zone()

		utc := naive.Add(-time.Duration(offset) * time.Second)

		candidates = append(candidates, candidate{
			utc:   utc,
			isDST: sampleLocal.IsDST(),
			valid: sameWallClock(utc.In(loc), naive),
		})
	}

	for _, c := range candidates {
		if c.valid && !c.isDST {
			return c.utc
		}
	}
	for _, c := range candidates {
		if c.valid {
			return c.utc
		}
	}
	// Inside a gap: the zone in force before the wall clock ends at the transition
	_, transition := naive.Add(-12 * time.Hour).In(loc).ZoneBounds()
	if !transition.IsZero() {
		return transition.UTC()
	}

	return time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc).UTC()
}

// UTCToLocal converts an instant to the wall clock of loc
func UTCToLocal(instant time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	return instant.UTC().In(loc)
}

func sameWallClock(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
