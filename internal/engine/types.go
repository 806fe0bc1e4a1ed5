package engine

// PlanetPosition is one body's place in a chart.
type PlanetPosition struct {
	Longitude    float64 `json:"longitude"`
	Speed        float64 `json:"speed"`
	Distance     float64 `json:"distance"`
	ZodiacSign   string  `json:"zodiac_sign"`
	FormattedPos string  `json:"formatted_pos"`
	House        int     `json:"house,omitempty"`
}

// Retrograde reports whether the body was moving backwards through the
// zodiac at the chart moment.
func (p PlanetPosition) Retrograde() bool {
	return p.Speed < 0
}

// Angles holds the chart angles. Field names follow the service's wire
// format.
type Angles struct {
	Ascendant          float64 `json:"Ascendant"`
	MC                 float64 `json:"MC"`
	AscendantFormatted string  `json:"Ascendant_formatted"`
	MCFormatted        string  `json:"MC_formatted"`
	AscendantSign      string  `json:"Ascendant_sign"`
	MCSign             string  `json:"MC_sign"`
}

// Location is the geographic place a chart was cast for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Chart is a complete natal (or transit) chart.
type Chart struct {
	// Planets maps body name to position.
	Planets map[string]PlanetPosition `json:"planets"`
	// Houses maps "House1".."House12" to the cusp longitude in degrees.
	Houses map[string]float64 `json:"houses"`
	Angles Angles             `json:"angles"`
	// JulianDay of the chart moment (UT).
	JulianDay float64 `json:"julian_day"`
	// DatetimeUTC is the chart moment as "YYYY-MM-DD HH:MM:SS".
	DatetimeUTC string `json:"datetime_utc"`
	// Timezone is the IANA zone resolved from the coordinates.
	Timezone string `json:"timezone"`
	// DatetimeLocal echoes the requested local date and time.
	DatetimeLocal string   `json:"datetime_local"`
	Location      Location `json:"location"`
}
