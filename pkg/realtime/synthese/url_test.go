package synthese

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/rtproxy/pkg/ctdf"

	_ "time/tzdata"
)

func newTestURLBuilder(t *testing.T) *URLBuilder {
	t.Helper()

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	return &URLBuilder{
		ServiceURL:  "http://synthese.example/",
		ObjectIDTag: "synthese",
		Location:    paris,
	}
}

func TestURLBuilder(t *testing.T) {
	builder := newTestURLBuilder(t)
	from := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	summer := time.Date(2024, 7, 1, 7, 5, 0, 0, time.UTC)

	tests := []struct {
		name     string
		point    *ctdf.RoutePoint
		count    int
		from     *time.Time
		expected string
	}{
		{
			name:     "stop only",
			point:    ctdf.NewRoutePoint("synthese", "R1", "42"),
			expected: "http://synthese.example/?SERVICE=tdg&roid=42",
		},
		{
			name:     "with count",
			point:    ctdf.NewRoutePoint("synthese", "R1", "42"),
			count:    5,
			expected: "http://synthese.example/?SERVICE=tdg&roid=42&rn=5",
		},
		{
			name:     "with reference time converted to local time",
			point:    ctdf.NewRoutePoint("synthese", "R1", "42"),
			from:     &from,
			expected: "http://synthese.example/?SERVICE=tdg&roid=42&date=2024-01-01+08%3A00",
		},
		{
			name:     "with count and summer reference time",
			point:    ctdf.NewRoutePoint("synthese", "R1", "42"),
			count:    2,
			from:     &summer,
			expected: "http://synthese.example/?SERVICE=tdg&roid=42&rn=2&date=2024-07-01+09%3A05",
		},
		{
			name:     "stop identifier is escaped",
			point:    ctdf.NewRoutePoint("synthese", "R1", "stop 1&2"),
			expected: "http://synthese.example/?SERVICE=tdg&roid=stop+1%262",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, ok := builder.Build(tt.point, tt.count, tt.from)

			require.True(t, ok)
			assert.Equal(t, tt.expected, url)
		})
	}
}

func TestURLBuilderMissingStop(t *testing.T) {
	builder := newTestURLBuilder(t)

	url, ok := builder.Build(ctdf.NewRoutePoint("synthese", "R1", ""), 5, nil)
	assert.False(t, ok)
	assert.Empty(t, url)

	// Identifiers of another provider are ignored
	url, ok = builder.Build(ctdf.NewRoutePoint("other", "R1", "42"), 5, nil)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestURLBuilderIsDeterministic(t *testing.T) {
	builder := newTestURLBuilder(t)
	from := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	first, _ := builder.Build(ctdf.NewRoutePoint("synthese", "R1", "42"), 3, &from)
	second, _ := builder.Build(ctdf.NewRoutePoint("synthese", "R2", "42"), 3, &from)

	assert.Equal(t, first, second, "the route does not take part in the query")
}
