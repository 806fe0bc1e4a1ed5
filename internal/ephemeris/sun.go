package ephemeris

// solarPosition returns the Sun's apparent geocentric ecliptic longitude in
// degrees and its distance in AU. Meeus, Astronomical Algorithms, ch. 25.
func solarPosition(jd float64) (lon, dist float64) {
	t := centuries(jd)

	// Geometric mean longitude and mean anomaly.
	l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
	m := 357.52911 + 35999.05029*t - 0.0001537*t*t
	e := 0.016708634 - 0.000042037*t - 0.0000001267*t*t

	// Equation of center.
	c := (1.914602-0.004817*t-0.000014*t*t)*sind(m) +
		(0.019993-0.000101*t)*sind(2*m) +
		0.000289*sind(3*m)

	trueLon := l0 + c
	nu := m + c
	dist = 1.000001018 * (1 - e*e) / (1 + e*cosd(nu))

	// Apparent longitude: nutation and aberration.
	omega := 125.04 - 1934.136*t
	lon = Normalize(trueLon - 0.00569 - 0.00478*sind(omega))
	return lon, dist
}
