package ephemeris

import (
	"fmt"
	"math"
)

// keplerElements are osculating orbital elements at J2000 with per-century
// rates, from the JPL "Approximate Positions of the Planets" table valid
// 1800-2050. Angles in degrees, semi-major axis in AU.
type keplerElements struct {
	a, aDot       float64 // semi-major axis
	e, eDot       float64 // eccentricity
	i, iDot       float64 // inclination
	l, lDot       float64 // mean longitude
	peri, periDot float64 // longitude of perihelion
	node, nodeDot float64 // longitude of ascending node
}

var planetElements = map[Body]keplerElements{
	Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus: {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	Mars: {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn: {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus: {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	Pluto: {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// earthElements is the Earth-Moon barycenter. The offset between Earth and
// the barycenter is well below chart tolerance.
var earthElements = keplerElements{
	1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
	100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0,
}

// planetPosition returns apparent geocentric ecliptic coordinates (equinox
// of date) for one of the major planets.
func planetPosition(jd float64, b Body) (lon, lat, dist float64, err error) {
	el, ok := planetElements[b]
	if !ok {
		return 0, 0, 0, fmt.Errorf("no orbital elements for body %s", b)
	}
	t := centuries(jd)

	px, py, pz := heliocentric(el, t)
	ex, ey, ez := heliocentric(earthElements, t)

	// Geocentric vector in the J2000 ecliptic frame.
	gx, gy, gz := px-ex, py-ey, pz-ez
	dist = math.Sqrt(gx*gx + gy*gy + gz*gz)

	lonJ2000 := Normalize(atan2d(gy, gx))
	lat = asind(gz / dist)

	// Precess from J2000 to the equinox of date, then apply nutation.
	precession := (5029.0966*t + 1.11113*t*t) / 3600
	lon = Normalize(lonJ2000 + precession + nutationLongitude(jd))
	return lon, lat, dist, nil
}

// heliocentric returns the heliocentric rectangular coordinates (AU) of a
// body in the J2000 ecliptic frame.
func heliocentric(el keplerElements, t float64) (x, y, z float64) {
	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	inc := el.i + el.iDot*t
	l := el.l + el.lDot*t
	peri := el.peri + el.periDot*t
	node := el.node + el.nodeDot*t

	// Argument of perihelion and mean anomaly.
	omega := peri - node
	m := math.Mod(l-peri, 360)
	if m > 180 {
		m -= 360
	}
	if m < -180 {
		m += 360
	}

	ecc := solveKepler(m, e)

	// Position in the orbital plane.
	xp := a * (cosd(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * sind(ecc)

	// Rotate to the ecliptic frame.
	cw, sw := cosd(omega), sind(omega)
	cn, sn := cosd(node), sind(node)
	ci, si := cosd(inc), sind(inc)

	x = (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y = (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z = sw*si*xp + cw*si*yp
	return x, y, z
}

// solveKepler solves Kepler's equation M = E - e sin E by Newton iteration.
// Both M and the returned eccentric anomaly are in degrees.
func solveKepler(m, e float64) float64 {
	eDeg := e * 180 / math.Pi
	ecc := m + eDeg*sind(m)
	for i := 0; i < 20; i++ {
		delta := (m - (ecc - eDeg*sind(ecc))) / (1 - e*cosd(ecc))
		ecc += delta
		if math.Abs(delta) < 1e-8 {
			break
		}
	}
	return ecc
}
