package ephemeris

import (
	"math"
	"time"
)

// J2000 is the Julian Day of the standard epoch 2000 January 1.5 TT.
const J2000 = 2451545.0

// JulianDay converts a Gregorian calendar date (UT) to a Julian Day.
// The day may carry a fractional part.
func JulianDay(year, month int, day float64) float64 {
	y, m := year, month
	if m <= 2 {
		y--
		m += 12
	}
	a := y / 100
	b := 2 - a + a/4
	return math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(m+1)) +
		day + float64(b) - 1524.5
}

// JulianDayTime converts a time.Time to a Julian Day. The time is read in
// UTC.
func JulianDayTime(t time.Time) float64 {
	t = t.UTC()
	day := float64(t.Day()) +
		float64(t.Hour())/24 +
		float64(t.Minute())/1440 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/86400
	return JulianDay(t.Year(), int(t.Month()), day)
}

// TimeFromJulianDay converts a Julian Day back to a UTC time.Time.
func TimeFromJulianDay(jd float64) time.Time {
	// JD 2440587.5 is the Unix epoch.
	secs := (jd - 2440587.5) * 86400
	return time.Unix(int64(secs), int64((secs-math.Floor(secs))*1e9)).UTC()
}

// centuries returns Julian centuries since J2000.
func centuries(jd float64) float64 {
	return (jd - J2000) / 36525
}

// GreenwichSiderealTime returns the Greenwich mean sidereal time at the
// given Julian Day, in degrees [0, 360).
func GreenwichSiderealTime(jd float64) float64 {
	t := centuries(jd)
	theta := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*t*t -
		t*t*t/38710000
	return Normalize(theta)
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees.
func MeanObliquity(jd float64) float64 {
	t := centuries(jd)
	return 23.43929111 -
		0.01300416667*t -
		1.638888889e-7*t*t +
		5.036111111e-7*t*t*t
}

// nutationLongitude returns the nutation in longitude in degrees, from the
// two dominant terms. The full series is far below chart tolerance.
func nutationLongitude(jd float64) float64 {
	t := centuries(jd)
	omega := 125.04452 - 1934.136261*t
	l := 280.4665 + 36000.7698*t
	lm := 218.3165 + 481267.8813*t
	dpsiArcsec := -17.20*sind(omega) - 1.32*sind(2*l) - 0.23*sind(2*lm) + 0.21*sind(2*omega)
	return dpsiArcsec / 3600
}
