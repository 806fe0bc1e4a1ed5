// Package ephemeris computes apparent geocentric ecliptic positions for the
// bodies used in chart calculation. Positions come from standard analytic
// series (Meeus solar and lunar theory, JPL approximate Keplerian elements
// for the planets) and need no external data files. Accuracy is at the
// arcminute level over roughly 1800-2050, ample for sign, house and aspect
// decisions.
package ephemeris

import (
	"fmt"
	"math"
)

// Body identifies a celestial body or calculated point.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	MeanNode
)

var bodyNames = map[Body]string{
	Sun:      "Sun",
	Moon:     "Moon",
	Mercury:  "Mercury",
	Venus:    "Venus",
	Mars:     "Mars",
	Jupiter:  "Jupiter",
	Saturn:   "Saturn",
	Uranus:   "Uranus",
	Neptune:  "Neptune",
	Pluto:    "Pluto",
	MeanNode: "Node",
}

// String returns the conventional chart name for the body.
func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// ChartBodies lists the bodies included in a natal chart, in traditional
// order.
var ChartBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn,
	Uranus, Neptune, Pluto, MeanNode,
}

// Position is an apparent geocentric ecliptic position.
type Position struct {
	// Longitude is the ecliptic longitude in degrees [0, 360).
	Longitude float64
	// Latitude is the ecliptic latitude in degrees.
	Latitude float64
	// Distance is the geocentric distance in AU.
	Distance float64
	// Speed is the daily motion in longitude, degrees per day.
	// Negative speed means the body is retrograde.
	Speed float64
}

// speedStep is the half-interval, in days, used for the symmetric
// difference that yields daily motion.
const speedStep = 0.05

// Compute returns the apparent position of a body at the given Julian Day
// (UT).
func Compute(jd float64, b Body) (Position, error) {
	lon, lat, dist, err := locate(jd, b)
	if err != nil {
		return Position{}, err
	}

	before, _, _, err := locate(jd-speedStep, b)
	if err != nil {
		return Position{}, err
	}
	after, _, _, err := locate(jd+speedStep, b)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Longitude: lon,
		Latitude:  lat,
		Distance:  dist,
		Speed:     wrapDiff(after-before) / (2 * speedStep),
	}, nil
}

// locate dispatches to the per-body theory.
func locate(jd float64, b Body) (lon, lat, dist float64, err error) {
	switch b {
	case Sun:
		lon, dist = solarPosition(jd)
		return lon, 0, dist, nil
	case Moon:
		lon, lat, dist = lunarPosition(jd)
		return lon, lat, dist, nil
	case MeanNode:
		return meanNodeLongitude(jd), 0, meanLunarDistanceAU, nil
	default:
		lon, lat, dist, err = planetPosition(jd, b)
		return lon, lat, dist, err
	}
}

// Normalize reduces an angle to [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// wrapDiff reduces an angle difference to (-180, 180].
func wrapDiff(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}

func sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
func cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func tand(deg float64) float64 { return math.Tan(deg * math.Pi / 180) }

func atan2d(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
func asind(v float64) float64     { return math.Asin(v) * 180 / math.Pi }
