package engine

import (
	"math"

	"github.com/astromind-labs/astromind/internal/ephemeris"
)

// houseData carries the computed cusps and angles for one chart.
type houseData struct {
	cusps     [13]float64 // 1-indexed by house number
	ascendant float64
	mc        float64
}

// calculateHouses computes Placidus house cusps for a moment and place.
// Above the polar circles the Placidus semi-arc division is undefined for
// some declinations; the intermediate cusps then fall back to Porphyry
// division, which is what Swiss Ephemeris does as well.
func calculateHouses(jd, lat, lon float64) houseData {
	eps := ephemeris.MeanObliquity(jd)
	// Local sidereal time = right ascension of the MC. East longitude is
	// positive.
	ramc := ephemeris.Normalize(ephemeris.GreenwichSiderealTime(jd) + lon)

	mc := eclipticFromRA(ramc, eps)
	asc := ascendant(ramc, eps, lat)

	var hd houseData
	hd.ascendant = asc
	hd.mc = mc
	hd.cusps[1] = asc
	hd.cusps[10] = mc

	c11, ok11 := placidusCusp(ramc, eps, lat, 11)
	c12, ok12 := placidusCusp(ramc, eps, lat, 12)
	c2, ok2 := placidusCusp(ramc, eps, lat, 2)
	c3, ok3 := placidusCusp(ramc, eps, lat, 3)

	if ok11 && ok12 && ok2 && ok3 {
		hd.cusps[11] = c11
		hd.cusps[12] = c12
		hd.cusps[2] = c2
		hd.cusps[3] = c3
	} else {
		porphyry(&hd)
	}

	// Opposite cusps.
	hd.cusps[4] = ephemeris.Normalize(hd.cusps[10] + 180)
	hd.cusps[5] = ephemeris.Normalize(hd.cusps[11] + 180)
	hd.cusps[6] = ephemeris.Normalize(hd.cusps[12] + 180)
	hd.cusps[7] = ephemeris.Normalize(hd.cusps[1] + 180)
	hd.cusps[8] = ephemeris.Normalize(hd.cusps[2] + 180)
	hd.cusps[9] = ephemeris.Normalize(hd.cusps[3] + 180)

	return hd
}

// eclipticFromRA converts a right ascension on the ecliptic to ecliptic
// longitude, keeping the quadrant.
func eclipticFromRA(ra, eps float64) float64 {
	return ephemeris.Normalize(atan2d(sind(ra), cosd(ra)*cosd(eps)))
}

// ascendant returns the ecliptic longitude rising on the eastern horizon.
func ascendant(ramc, eps, lat float64) float64 {
	num := cosd(ramc)
	den := -(sind(ramc)*cosd(eps) + tand(lat)*sind(eps))
	return ephemeris.Normalize(atan2d(num, den))
}

// placidusCusp iterates the Placidus semi-arc condition for one of the
// intermediate houses (11, 12, 2, 3). The cusp of house 11 sits one third
// of the way along the diurnal semi-arc from the meridian, house 12 two
// thirds; houses 2 and 3 divide the nocturnal semi-arc from the IC. The
// second return value is false when the ascensional difference is
// undefined (circumpolar declination).
func placidusCusp(ramc, eps, lat float64, house int) (float64, bool) {
	var offset, frac float64
	var diurnal bool
	switch house {
	case 11:
		offset, frac, diurnal = 30, 1.0/3, true
	case 12:
		offset, frac, diurnal = 60, 2.0/3, true
	case 2:
		offset, frac, diurnal = 120, 2.0/3, false
	case 3:
		offset, frac, diurnal = 150, 1.0/3, false
	default:
		return 0, false
	}

	ra := ramc + offset
	for i := 0; i < 50; i++ {
		lonEcl := eclipticFromRA(ra, eps)
		decl := asind(sind(eps) * sind(lonEcl))

		x := tand(lat) * tand(decl)
		if math.Abs(x) >= 1 {
			return 0, false
		}
		ad := asind(x)

		var next float64
		if diurnal {
			next = ramc + frac*(90+ad)
		} else {
			next = ramc + 180 - frac*(90-ad)
		}
		if math.Abs(angleDiff(next, ra)) < 1e-7 {
			ra = next
			break
		}
		ra = next
	}
	return eclipticFromRA(ra, eps), true
}

// porphyry fills the intermediate cusps by trisecting the ecliptic arcs
// between the angles.
func porphyry(hd *houseData) {
	arcMCToAsc := ephemeris.Normalize(hd.ascendant - hd.mc)
	hd.cusps[11] = ephemeris.Normalize(hd.mc + arcMCToAsc/3)
	hd.cusps[12] = ephemeris.Normalize(hd.mc + 2*arcMCToAsc/3)

	ic := ephemeris.Normalize(hd.mc + 180)
	arcAscToIC := ephemeris.Normalize(ic - hd.ascendant)
	hd.cusps[2] = ephemeris.Normalize(hd.ascendant + arcAscToIC/3)
	hd.cusps[3] = ephemeris.Normalize(hd.ascendant + 2*arcAscToIC/3)
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}

func sind(deg float64) float64    { return math.Sin(deg * math.Pi / 180) }
func cosd(deg float64) float64    { return math.Cos(deg * math.Pi / 180) }
func tand(deg float64) float64    { return math.Tan(deg * math.Pi / 180) }
func asind(v float64) float64     { return math.Asin(v) * 180 / math.Pi }
func atan2d(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
