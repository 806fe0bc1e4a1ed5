package ephemeris

// meanLunarDistanceAU is the Moon's mean geocentric distance. It is also
// reported as the nominal distance of the mean node, which has no physical
// distance of its own.
const meanLunarDistanceAU = 385000.56 / 149597870.7

// lunarTerm is one periodic term of the truncated ELP series from Meeus,
// Astronomical Algorithms, table 47.a. Arguments are multiples of D, M, M'
// and F; sl is the longitude coefficient in 1e-6 degrees, sr the distance
// coefficient in 1e-3 km.
type lunarTerm struct {
	d, m, mp, f int
	sl, sr      float64
}

var lunarTerms = []lunarTerm{
	{0, 0, 1, 0, 6288774, -20905355},
	{2, 0, -1, 0, 1274027, -3699111},
	{2, 0, 0, 0, 658314, -2955968},
	{0, 0, 2, 0, 213618, -569925},
	{0, 1, 0, 0, -185116, 48888},
	{0, 0, 0, 2, -114332, -3149},
	{2, 0, -2, 0, 58793, 246158},
	{2, -1, -1, 0, 57066, -152138},
	{2, 0, 1, 0, 53322, -170733},
	{2, -1, 0, 0, 45758, -204586},
	{0, 1, -1, 0, -40923, -129620},
	{1, 0, 0, 0, -34720, 108743},
	{0, 1, 1, 0, -30383, 104755},
	{2, 0, 0, -2, 15327, 10321},
	{0, 0, 1, 2, -12528, 0},
	{0, 0, 1, -2, 10980, 79661},
	{4, 0, -1, 0, 10675, -34782},
	{0, 0, 3, 0, 10034, -23210},
	{4, 0, -2, 0, 8548, -21636},
	{2, 1, -1, 0, -7888, 24208},
	{2, 1, 0, 0, -6766, 30824},
	{1, 0, -1, 0, -5163, -8379},
	{1, 1, 0, 0, 4987, -16675},
	{2, -1, 1, 0, 4036, -12831},
	{2, 0, 2, 0, 3994, -10445},
	{4, 0, 0, 0, 3861, -11650},
	{2, 0, -3, 0, 3665, 14403},
	{0, 1, -2, 0, -2689, -7003},
	{2, 0, -1, 2, -2602, 0},
	{2, -1, -2, 0, 2390, 10056},
	{1, 0, 1, 0, -2348, 6322},
	{2, -2, 0, 0, 2236, -9884},
}

// lunarLatTerm is one periodic term for ecliptic latitude (table 47.b),
// coefficient in 1e-6 degrees.
type lunarLatTerm struct {
	d, m, mp, f int
	sb          float64
}

var lunarLatTerms = []lunarLatTerm{
	{0, 0, 0, 1, 5128122},
	{0, 0, 1, 1, 280602},
	{0, 0, 1, -1, 277693},
	{2, 0, 0, -1, 173237},
	{2, 0, -1, 1, 55413},
	{2, 0, -1, -1, 46271},
	{2, 0, 0, 1, 32573},
	{0, 0, 2, 1, 17198},
	{2, 0, 1, -1, 9266},
	{0, 0, 2, -1, 8822},
	{2, -1, 0, -1, 8216},
	{2, 0, -2, -1, 4324},
	{2, 0, 1, 1, 4200},
	{2, 1, 0, -1, -3359},
}

// lunarPosition returns the Moon's apparent geocentric ecliptic longitude
// and latitude in degrees and its distance in AU. Meeus ch. 47, truncated.
func lunarPosition(jd float64) (lon, lat, dist float64) {
	t := centuries(jd)

	lp := 218.3164477 + 481267.88123421*t - 0.0015786*t*t + t*t*t/538841 - t*t*t*t/65194000
	d := 297.8501921 + 445267.1114034*t - 0.0018819*t*t + t*t*t/545868 - t*t*t*t/113065000
	m := 357.5291092 + 35999.0502909*t - 0.0001536*t*t + t*t*t/24490000
	mp := 134.9633964 + 477198.8675055*t + 0.0087414*t*t + t*t*t/69699 - t*t*t*t/14712000
	f := 93.2720950 + 483202.0175233*t - 0.0036539*t*t - t*t*t/3526000 + t*t*t*t/863310000

	// Eccentricity damping for terms involving the Sun's anomaly.
	e := 1 - 0.002516*t - 0.0000074*t*t

	var sumL, sumR float64
	for _, term := range lunarTerms {
		arg := float64(term.d)*d + float64(term.m)*m + float64(term.mp)*mp + float64(term.f)*f
		mult := 1.0
		switch term.m {
		case 1, -1:
			mult = e
		case 2, -2:
			mult = e * e
		}
		sumL += term.sl * mult * sind(arg)
		sumR += term.sr * mult * cosd(arg)
	}

	var sumB float64
	for _, term := range lunarLatTerms {
		arg := float64(term.d)*d + float64(term.m)*m + float64(term.mp)*mp + float64(term.f)*f
		mult := 1.0
		switch term.m {
		case 1, -1:
			mult = e
		case 2, -2:
			mult = e * e
		}
		sumB += term.sb * mult * sind(arg)
	}

	// Additive corrections (Venus, Jupiter, flattening).
	a1 := 119.75 + 131.849*t
	a2 := 53.09 + 479264.290*t
	a3 := 313.45 + 481266.484*t
	sumL += 3958*sind(a1) + 1962*sind(lp-f) + 318*sind(a2)
	sumB += -2235*sind(lp) + 382*sind(a3) + 175*sind(a1-f) + 175*sind(a1+f)

	lon = Normalize(lp + sumL/1e6 + nutationLongitude(jd))
	lat = sumB / 1e6
	dist = (385000.56 + sumR/1000) / 149597870.7
	return lon, lat, dist
}

// meanNodeLongitude returns the longitude of the mean ascending lunar node
// in degrees. Meeus 47.7.
func meanNodeLongitude(jd float64) float64 {
	t := centuries(jd)
	omega := 125.0445479 - 1934.1362891*t + 0.0020754*t*t + t*t*t/467441 - t*t*t*t/60616000
	return Normalize(omega)
}
