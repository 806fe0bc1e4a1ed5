// Package aspects detects angular relationships between chart points:
// within one natal chart, between two charts (synastry) and between a
// transit chart and a natal chart.
package aspects

import (
	"math"
	"sort"

	"github.com/astromind-labs/astromind/internal/engine"
)

// Kind names a major aspect.
type Kind string

const (
	Conjunction Kind = "conjunction"
	Opposition  Kind = "opposition"
	Square      Kind = "square"
	Trine       Kind = "trine"
	Sextile     Kind = "sextile"
)

// aspectAngles is checked in this order so ties resolve the same way
// every run.
var aspectAngles = []struct {
	kind  Kind
	ideal float64
}{
	{Conjunction, 0},
	{Opposition, 180},
	{Square, 90},
	{Trine, 120},
	{Sextile, 60},
}

// Aspect is one detected angular relationship. For natal and synastry
// results Planet1/Planet2 carry the point names; transit results use the
// same fields with Planet1 as the transiting body and Planet2 as the
// natal point.
type Aspect struct {
	Planet1 string  `json:"planet1"`
	Planet2 string  `json:"planet2"`
	Kind    Kind    `json:"aspect"`
	Angle   float64 `json:"angle"`
	Orb     float64 `json:"orb"`
}

var outerPlanets = map[string]bool{
	"Uranus":  true,
	"Neptune": true,
	"Pluto":   true,
}

// maxOrb returns the allowed deviation from the ideal angle for a pair of
// points. Hard aspects (conjunction, opposition, square) get the wider
// budget; any pair involving an outer planet is tightened.
func maxOrb(p1, p2 string, kind Kind, wider bool) float64 {
	major, minor := 8.0, 5.0
	outerMajor, outerMinor := 5.0, 4.0
	if wider {
		major, minor = 10.0, 6.0
		outerMajor, outerMinor = 6.0, 5.0
	}

	outer := outerPlanets[p1] || outerPlanets[p2]
	switch kind {
	case Conjunction, Opposition, Square:
		if outer {
			return outerMajor
		}
		return major
	default:
		if outer {
			return outerMinor
		}
		return minor
	}
}

// separation returns the smallest angle between two longitudes, 0 to 180.
func separation(lon1, lon2 float64) float64 {
	diff := math.Mod(math.Abs(lon1-lon2), 360)
	return math.Min(diff, 360-diff)
}

// chartPoints collects aspectable points from a chart. withAngles adds
// the Ascendant and MC.
func chartPoints(c *engine.Chart, withAngles bool) map[string]float64 {
	points := make(map[string]float64, len(c.Planets)+2)
	for name, pos := range c.Planets {
		points[name] = pos.Longitude
	}
	if withAngles {
		points["ASC"] = c.Angles.Ascendant
		points["MC"] = c.Angles.MC
	}
	return points
}

// Natal finds the aspects within a single chart, including the chart
// angles, sorted tightest orb first.
func Natal(chart *engine.Chart, wider bool) []Aspect {
	points := chartPoints(chart, true)
	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.Strings(names)

	var found []Aspect
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			found = append(found, match(names[i], names[j], points[names[i]], points[names[j]], wider)...)
		}
	}
	sortByOrb(found)
	return found
}

// Synastry finds the aspects between a user's chart and a partner's
// chart. Planet1 is always the user's point; the user's Ascendant and MC
// participate, the partner's do not.
func Synastry(user, partner *engine.Chart, wider bool) []Aspect {
	userPoints := chartPoints(user, true)
	partnerPoints := chartPoints(partner, false)

	var found []Aspect
	for _, uName := range sortedNames(userPoints) {
		for _, pName := range sortedNames(partnerPoints) {
			found = append(found, match(uName, pName, userPoints[uName], partnerPoints[pName], wider)...)
		}
	}
	sortByOrb(found)
	return found
}

// Transits finds the aspects the transiting planets make to a natal
// chart's planets. Planet1 is the transiting body.
func Transits(natal, transit *engine.Chart, wider bool) []Aspect {
	natalPoints := chartPoints(natal, false)
	transitPoints := chartPoints(transit, false)

	var found []Aspect
	for _, tName := range sortedNames(transitPoints) {
		for _, nName := range sortedNames(natalPoints) {
			found = append(found, match(tName, nName, transitPoints[tName], natalPoints[nName], wider)...)
		}
	}
	sortByOrb(found)
	return found
}

func match(name1, name2 string, lon1, lon2 float64, wider bool) []Aspect {
	angle := separation(lon1, lon2)
	var found []Aspect
	for _, a := range aspectAngles {
		orb := math.Abs(angle - a.ideal)
		if orb <= maxOrb(name1, name2, a.kind, wider) {
			found = append(found, Aspect{
				Planet1: name1,
				Planet2: name2,
				Kind:    a.kind,
				Angle:   round2(angle),
				Orb:     round2(orb),
			})
		}
	}
	return found
}

func sortedNames(points map[string]float64) []string {
	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortByOrb(aspects []Aspect) {
	sort.SliceStable(aspects, func(i, j int) bool {
		return aspects[i].Orb < aspects[j].Orb
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
