package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "time/tzdata"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)

	return loc
}

func TestLocalToUTC(t *testing.T) {
	newYork := mustLoadLocation(t, "America/New_York")
	paris := mustLoadLocation(t, "Europe/Paris")
	sydney := mustLoadLocation(t, "Australia/Sydney")

	tests := []struct {
		name     string
		local    time.Time
		loc      *time.Location
		expected time.Time
	}{
		{
			name:     "winter time",
			local:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			loc:      paris,
			expected: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "summer time",
			local:    time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
			loc:      paris,
			expected: time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC),
		},
		{
			name:     "spring forward gap resolves to the transition",
			local:    time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC),
			loc:      newYork,
			expected: time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "fall back overlap uses standard offset",
			local:    time.Date(2024, 11, 3, 1, 30, 0, 0, time.UTC),
			loc:      newYork,
			expected: time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC),
		},
		{
			name:     "southern hemisphere daylight saving",
			local:    time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			loc:      sydney,
			expected: time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC),
		},
		{
			name:     "location of the input is ignored",
			local:    time.Date(2024, 1, 1, 8, 0, 0, 0, newYork),
			loc:      paris,
			expected: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LocalToUTC(tt.local, tt.loc)

			assert.True(t, tt.expected.Equal(result), "expected %s, got %s", tt.expected, result)
			assert.Equal(t, time.UTC, result.Location())
		})
	}
}

func TestLocalToUTCMonotonicAcrossSpringForward(t *testing.T) {
	newYork := mustLoadLocation(t, "America/New_York")

	previous := LocalToUTC(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), newYork)
	for minutes := 15; minutes <= 5*60; minutes += 15 {
		wall := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
		current := LocalToUTC(wall, newYork)

		assert.False(t, current.Before(previous), "%s converted before %s", wall, previous)
		previous = current
	}

	// EST before the transition, EDT after it
	beforeTransition := LocalToUTC(time.Date(2024, 3, 10, 1, 59, 0, 0, time.UTC), newYork)
	afterTransition := LocalToUTC(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), newYork)

	assert.True(t, time.Date(2024, 3, 10, 6, 59, 0, 0, time.UTC).Equal(beforeTransition))
	assert.True(t, time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC).Equal(afterTransition))
}

func TestUTCToLocal(t *testing.T) {
	paris := mustLoadLocation(t, "Europe/Paris")

	local := UTCToLocal(time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), paris)

	assert.Equal(t, "2024-01-01 08:00", local.Format("2006-01-02 15:04"))
}

func TestGetEnvironmentInt(t *testing.T) {
	env := map[string]string{"SET": "4", "BAD": "four"}

	value, err := GetEnvironmentInt(env, "SET", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, value)

	value, err = GetEnvironmentInt(env, "MISSING", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	_, err = GetEnvironmentInt(env, "BAD", 1)
	assert.Error(t, err)

	assert.Equal(t, "fallback", GetEnvironmentString(env, "MISSING", "fallback"))
	assert.Equal(t, "4", GetEnvironmentString(env, "SET", "fallback"))
}
