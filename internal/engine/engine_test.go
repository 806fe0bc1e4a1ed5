package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(WithTimezoneLookup(fixedTZ("UTC")))
	require.NoError(t, err)
	return e
}

func TestCalculateChart(t *testing.T) {
	e := newTestEngine(t)

	chart, err := e.CalculateChart("2000-01-01", "12:00", 51.48, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2451545.0, chart.JulianDay, 1e-6)
	assert.Equal(t, "2000-01-01 12:00:00", chart.DatetimeUTC)
	assert.Equal(t, "2000-01-01 12:00", chart.DatetimeLocal)
	assert.Equal(t, "UTC", chart.Timezone)
	assert.Equal(t, 51.48, chart.Location.Latitude)

	assert.Len(t, chart.Planets, 11)
	assert.Len(t, chart.Houses, 12)

	sun, ok := chart.Planets["Sun"]
	require.True(t, ok)
	assert.Equal(t, "Capricorn", sun.ZodiacSign)
	assert.InDelta(t, 280.2, sun.Longitude, 0.1)
	assert.False(t, sun.Retrograde())

	for name, p := range chart.Planets {
		assert.GreaterOrEqual(t, p.House, 1, "%s house", name)
		assert.LessOrEqual(t, p.House, 12, "%s house", name)
		assert.NotEmpty(t, p.FormattedPos, "%s formatted", name)
		assert.Equal(t, SignForLongitude(p.Longitude), p.ZodiacSign, name)
	}

	assert.Equal(t, chart.Angles.Ascendant, chart.Houses["House1"])
	assert.Equal(t, chart.Angles.MC, chart.Houses["House10"])
	assert.Equal(t, SignForLongitude(chart.Angles.Ascendant), chart.Angles.AscendantSign)
}

func TestCalculateChartValidation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		date     string
		time     string
		lat, lon float64
	}{
		{"latitude too high", "2000-01-01", "12:00", 91, 0},
		{"latitude too low", "2000-01-01", "12:00", -90.5, 0},
		{"longitude too high", "2000-01-01", "12:00", 0, 181},
		{"longitude too low", "2000-01-01", "12:00", 0, -180.5},
		{"bad date", "not-a-date", "12:00", 0, 0},
		{"bad time", "2000-01-01", "99:99", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CalculateChart(tt.date, tt.time, tt.lat, tt.lon)
			assert.Error(t, err)
		})
	}
}

func TestCalculateChartOceanCoordinates(t *testing.T) {
	e, err := New(WithTimezoneLookup(fixedTZ("")))
	require.NoError(t, err)

	chart, err := e.CalculateChart("1990-05-10", "08:30", 0, -160)
	require.NoError(t, err)
	assert.Equal(t, "UTC", chart.Timezone)
	assert.Equal(t, "1990-05-10 08:30:00", chart.DatetimeUTC)
}

func TestChartAt(t *testing.T) {
	e := newTestEngine(t)

	utc := time.Date(2020, 12, 21, 18, 0, 0, 0, time.UTC)
	chart, err := e.ChartAt(utc, 42.7, 23.3)
	require.NoError(t, err)

	assert.Equal(t, "UTC", chart.Timezone)
	assert.Empty(t, chart.DatetimeLocal)

	// Great conjunction day: Jupiter and Saturn within a degree.
	jup := chart.Planets["Jupiter"].Longitude
	sat := chart.Planets["Saturn"].Longitude
	assert.InDelta(t, 0, angleDiff(jup, sat), 1.0)
}

func TestSynastryHouseOverlays(t *testing.T) {
	e := newTestEngine(t)

	natal, err := e.CalculateChart("1985-02-09", "06:30", 42.7, 23.3)
	require.NoError(t, err)
	partner, err := e.CalculateChart("1987-11-23", "14:15", 42.15, 24.75)
	require.NoError(t, err)

	overlays := SynastryHouseOverlays(natal, partner)
	assert.Len(t, overlays, len(partner.Planets))
	for name, house := range overlays {
		assert.GreaterOrEqual(t, house, 1, name)
		assert.LessOrEqual(t, house, 12, name)
		assert.Equal(t, PlanetHouse(partner.Planets[name].Longitude, natal.Houses), house, name)
	}
}
