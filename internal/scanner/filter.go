package scanner

import "sort"

// DefaultMaxEvents caps how many events a forecast passes to the
// interpreter.
const DefaultMaxEvents = 400

var typePriority = map[string]int{
	TypeEclipse:    5,
	TypeRetrograde: 4,
	TypeLunation:   3,
	TypeTransit:    1,
}

var importantNatalPoints = map[string]bool{
	"Sun": true, "Moon": true, "Mercury": true, "Venus": true,
	"Mars": true, "Ascendant": true, "MC": true,
}

var importantTransitPlanets = map[string]bool{
	"Jupiter": true, "Saturn": true, "Uranus": true,
	"Neptune": true, "Pluto": true,
}

func eventPriority(e Event) int {
	p := typePriority[e.Type]
	if e.Type != TypeTransit {
		return p
	}
	switch {
	case importantTransitPlanets[e.Planet] && importantNatalPoints[e.NatalPlanet]:
		return p + 2
	case e.Planet == "Mars" && importantNatalPoints[e.NatalPlanet]:
		return p + 1
	default:
		return p
	}
}

// Filter keeps the most significant events when a scan exceeds max.
// Eclipses outrank stations, stations outrank lunations, and transits
// come last with a boost for slow planets hitting personal points. The
// survivors come back in date order.
func Filter(events []Event, max int) []Event {
	if len(events) <= max {
		return events
	}

	ranked := make([]Event, len(events))
	copy(ranked, events)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := eventPriority(ranked[i]), eventPriority(ranked[j])
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Date < ranked[j].Date
	})

	kept := ranked[:max]
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date < kept[j].Date
	})
	return kept
}
