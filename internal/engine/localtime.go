package engine

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// tzLookup resolves geographic coordinates to an IANA zone name. Satisfied
// by *tzf.DefaultFinder; tests substitute a fixed mapping.
type tzLookup interface {
	GetTimezoneName(lng, lat float64) string
}

// sofiaPre1979 covers Bulgarian birth data from before the country
// introduced daylight saving in 1979. Records from that era were kept in
// standard time year round, so a fixed UTC+2 matches the registries where
// the IANA database would not.
var sofiaPre1979 = time.FixedZone("EET", 2*60*60)

// localToUTC interprets a wall-clock date and time at the given
// coordinates and returns the UTC instant together with the zone name
// used.
func localToUTC(dateStr, timeStr string, lat, lon float64, tz tzLookup) (time.Time, string, error) {
	y, m, d, err := parseDate(dateStr)
	if err != nil {
		return time.Time{}, "", err
	}
	hh, mm, ss, err := parseTime(timeStr)
	if err != nil {
		return time.Time{}, "", err
	}

	// Coordinates outside the zone index (open ocean, coverage gaps)
	// fall back to UTC rather than failing the chart.
	name := tz.GetTimezoneName(lon, lat)
	loc := time.UTC
	if name == "" {
		name = "UTC"
	} else {
		loc, err = time.LoadLocation(name)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("load timezone %q: %w", name, err)
		}
	}

	local := time.Date(y, time.Month(m), d, hh, mm, ss, 0, loc)
	if name == "Europe/Sofia" && y < 1979 {
		local = time.Date(y, time.Month(m), d, hh, mm, ss, 0, sofiaPre1979)
	}
	return local.UTC(), name, nil
}

// parseDate accepts YYYY-MM-DD or YYYY/MM/DD.
func parseDate(s string) (year, month, day int, err error) {
	s = strings.TrimSpace(s)
	norm := strings.ReplaceAll(s, "/", "-")
	t, err := time.Parse("2006-1-2", norm)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// parseTime accepts HH:MM or HH:MM:SS.
func parseTime(s string) (hour, min, sec int, err error) {
	s = strings.TrimSpace(s)
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	return 0, 0, 0, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
}
