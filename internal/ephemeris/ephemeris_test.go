package ephemeris

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   float64
		want  float64
	}{
		{"J2000 epoch", 2000, 1, 1.5, 2451545.0},
		{"Sputnik launch", 1957, 10, 4.81, 2436116.31},
		{"1990-01-01 noon", 1990, 1, 1.5, 2447893.0},
		{"start of Gregorian year", 2026, 1, 1.0, 2461041.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, JulianDay(tt.year, tt.month, tt.day), 1e-6)
		})
	}
}

func TestJulianDayTimeRoundTrip(t *testing.T) {
	moments := []time.Time{
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(1990, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 20, 14, 45, 50, 0, time.UTC),
	}
	for _, moment := range moments {
		jd := JulianDayTime(moment)
		back := TimeFromJulianDay(jd)
		assert.WithinDuration(t, moment, back, time.Second)
	}
}

func TestGreenwichSiderealTime(t *testing.T) {
	// Meeus example 12.a: 1987 April 10, 0h UT.
	got := GreenwichSiderealTime(2446895.5)
	assert.InDelta(t, 197.693195, got, 0.01)
}

func TestMeanObliquity(t *testing.T) {
	assert.InDelta(t, 23.4393, MeanObliquity(J2000), 0.001)
}

func TestSolarPosition(t *testing.T) {
	t.Run("Meeus example 25.a", func(t *testing.T) {
		// 1992 October 13, 0h TD.
		pos, err := Compute(2448908.5, Sun)
		require.NoError(t, err)
		assert.InDelta(t, 199.906, pos.Longitude, 0.02)
		assert.InDelta(t, 0.9976, pos.Distance, 0.001)
		assert.Greater(t, pos.Speed, 0.95)
		assert.Less(t, pos.Speed, 1.05)
	})

	t.Run("2000 vernal equinox", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2000, 3, 20, 7, 35, 0, 0, time.UTC))
		pos, err := Compute(jd, Sun)
		require.NoError(t, err)
		// Longitude crosses 0 Aries at the equinox.
		off := math.Min(pos.Longitude, 360-pos.Longitude)
		assert.Less(t, off, 0.05)
	})
}

func TestLunarPosition(t *testing.T) {
	t.Run("Meeus example 47.a", func(t *testing.T) {
		// 1992 April 12, 0h TD; apparent longitude 133.1673.
		pos, err := Compute(2448724.5, Moon)
		require.NoError(t, err)
		assert.InDelta(t, 133.167, pos.Longitude, 0.05)
		assert.InDelta(t, -3.229, pos.Latitude, 0.05)
		assert.InDelta(t, 368409.7/149597870.7, pos.Distance, 500/149597870.7)
	})

	t.Run("new moon January 2000", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC))
		sun, err := Compute(jd, Sun)
		require.NoError(t, err)
		moon, err := Compute(jd, Moon)
		require.NoError(t, err)
		sep := math.Abs(wrapDiff(sun.Longitude - moon.Longitude))
		assert.Less(t, sep, 1.0)
	})

	t.Run("daily motion near mean", func(t *testing.T) {
		pos, err := Compute(2451545.0, Moon)
		require.NoError(t, err)
		assert.Greater(t, pos.Speed, 11.0)
		assert.Less(t, pos.Speed, 15.5)
	})
}

func TestPlanetPositions(t *testing.T) {
	t.Run("great conjunction December 2020", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2020, 12, 21, 18, 0, 0, 0, time.UTC))
		jup, err := Compute(jd, Jupiter)
		require.NoError(t, err)
		sat, err := Compute(jd, Saturn)
		require.NoError(t, err)
		sep := math.Abs(wrapDiff(jup.Longitude - sat.Longitude))
		assert.Less(t, sep, 1.0)
		// Both at the start of Aquarius.
		assert.InDelta(t, 300.5, jup.Longitude, 1.0)
	})

	t.Run("Venus inferior conjunction June 2020", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2020, 6, 3, 18, 0, 0, 0, time.UTC))
		venus, err := Compute(jd, Venus)
		require.NoError(t, err)
		sun, err := Compute(jd, Sun)
		require.NoError(t, err)
		sep := math.Abs(wrapDiff(venus.Longitude - sun.Longitude))
		assert.Less(t, sep, 1.0)
	})

	t.Run("Mars retrograde October 2020", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC))
		mars, err := Compute(jd, Mars)
		require.NoError(t, err)
		assert.Negative(t, mars.Speed)
	})

	t.Run("Pluto in Sagittarius at millennium", func(t *testing.T) {
		jd := JulianDayTime(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
		pluto, err := Compute(jd, Pluto)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pluto.Longitude, 240.0)
		assert.Less(t, pluto.Longitude, 270.0)
	})

	t.Run("unknown body", func(t *testing.T) {
		_, err := Compute(2451545.0, Body(99))
		assert.Error(t, err)
	})
}

func TestMeanNode(t *testing.T) {
	pos, err := Compute(J2000, MeanNode)
	require.NoError(t, err)
	assert.InDelta(t, 125.04, pos.Longitude, 0.05)
	// The mean node regresses.
	assert.Negative(t, pos.Speed)
	assert.InDelta(t, -0.0529, pos.Speed, 0.002)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-30, 330},
		{725, 5},
		{-725, 355},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Normalize(tt.in), 1e-9)
	}
}

func TestWrapDiff(t *testing.T) {
	assert.InDelta(t, 10, wrapDiff(370), 1e-9)
	assert.InDelta(t, -10, wrapDiff(350), 1e-9)
	assert.InDelta(t, 180, wrapDiff(180), 1e-9)
	assert.InDelta(t, 2, wrapDiff(2-360), 1e-9)
}
