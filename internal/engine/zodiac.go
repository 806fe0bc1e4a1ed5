package engine

import (
	"fmt"
	"math"

	"github.com/astromind-labs/astromind/internal/ephemeris"
)

// Signs lists the zodiac signs in longitude order; each spans 30 degrees.
var Signs = []string{
	"Aries", "Taurus", "Gemini", "Cancer",
	"Leo", "Virgo", "Libra", "Scorpio",
	"Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// signRulers maps each sign to its modern ruling planet.
var signRulers = map[string]string{
	"Aries":       "Mars",
	"Taurus":      "Venus",
	"Gemini":      "Mercury",
	"Cancer":      "Moon",
	"Leo":         "Sun",
	"Virgo":       "Mercury",
	"Libra":       "Venus",
	"Scorpio":     "Pluto", // traditional: Mars
	"Sagittarius": "Jupiter",
	"Capricorn":   "Saturn",
	"Aquarius":    "Uranus",  // traditional: Saturn
	"Pisces":      "Neptune", // traditional: Jupiter
}

// DMS is a longitude broken into sign, in-sign degrees and minutes.
type DMS struct {
	Sign      string
	Degrees   int
	Minutes   int
	Formatted string
}

// SignForLongitude returns the zodiac sign containing a longitude.
func SignForLongitude(lon float64) string {
	idx := int(ephemeris.Normalize(lon)/30) % 12
	return Signs[idx]
}

// DecimalToDMS converts an ecliptic longitude to sign, degrees and minutes,
// with the formatted form `Sign deg°mm'`. Minutes that round to 60 roll
// over into the next degree and, at a sign boundary, the next sign.
func DecimalToDMS(lon float64) DMS {
	lon = ephemeris.Normalize(lon)
	signIdx := int(lon / 30)
	inSign := math.Mod(lon, 30)

	deg := int(inSign)
	min := int(math.Round((inSign - float64(deg)) * 60))
	if min >= 60 {
		min = 0
		deg++
		if deg >= 30 {
			deg = 0
			signIdx = (signIdx + 1) % 12
		}
	}

	sign := Signs[signIdx]
	return DMS{
		Sign:      sign,
		Degrees:   deg,
		Minutes:   min,
		Formatted: fmt.Sprintf("%s %d°%02d'", sign, deg, min),
	}
}

// SignRuler returns the modern ruler of a sign, or "" for an unknown sign.
func SignRuler(sign string) string {
	return signRulers[sign]
}

// RulerFromCusp returns the sign on a house cusp and that sign's ruler.
func RulerFromCusp(cusp float64) (sign, ruler string) {
	sign = DecimalToDMS(cusp).Sign
	return sign, SignRuler(sign)
}

// HouseRulers computes the ruling planet for each house cusp. Keys follow
// the service's wire format: "house_1_ruler" .. "house_12_ruler".
func HouseRulers(houses map[string]float64) map[string]string {
	rulers := make(map[string]string, len(houses))
	for n := 1; n <= 12; n++ {
		cusp, ok := houses[houseKey(n)]
		if !ok {
			continue
		}
		if _, ruler := RulerFromCusp(cusp); ruler != "" {
			rulers[fmt.Sprintf("house_%d_ruler", n)] = ruler
		}
	}
	return rulers
}

func houseKey(n int) string {
	return fmt.Sprintf("House%d", n)
}

// PlanetHouse determines which house a longitude falls in. A planet is in
// house H when cusp(H) <= lon < cusp(H+1), with wrap-around at 360->0
// (e.g. cusp12 352°, cusp1 14°: a planet at 5° is in house 12, one at 20°
// in house 1). Returns 0 when the cusps are unusable.
func PlanetHouse(lon float64, houses map[string]float64) int {
	if len(houses) == 0 {
		return 0
	}
	lon = ephemeris.Normalize(lon)

	type cusp struct {
		house int
		lon   float64
	}
	var cusps []cusp
	for n := 1; n <= 12; n++ {
		if c, ok := houses[houseKey(n)]; ok {
			cusps = append(cusps, cusp{n, ephemeris.Normalize(c)})
		}
	}
	if len(cusps) == 0 {
		return 0
	}

	for i, cur := range cusps {
		next := cusps[(i+1)%len(cusps)]
		if next.lon < cur.lon {
			// House spans the 360->0 boundary.
			if lon >= cur.lon || lon < next.lon {
				return cur.house
			}
		} else if cur.lon <= lon && lon < next.lon {
			return cur.house
		}
	}

	// Degenerate cusp data: pick the house with the nearest cusp.
	best := cusps[0]
	bestDist := math.MaxFloat64
	for _, c := range cusps {
		d := math.Abs(c.lon - lon)
		if d > 180 {
			d = 360 - d
		}
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best.house
}
