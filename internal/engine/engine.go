// Package engine computes natal and transit charts: planetary positions,
// Placidus house cusps, chart angles and the derived presentation fields
// served by the API.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/astromind-labs/astromind/internal/ephemeris"
)

// Engine turns birth data into charts. It is safe for concurrent use; the
// timezone finder is loaded once at construction because building its
// polygon index is expensive.
type Engine struct {
	logger *slog.Logger
	tz     tzLookup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for chart calculations.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTimezoneLookup overrides the coordinate to timezone resolver.
func WithTimezoneLookup(tz tzLookup) Option {
	return func(e *Engine) { e.tz = tz }
}

// New builds an Engine with the embedded timezone index.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	if e.tz == nil {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			return nil, fmt.Errorf("init timezone finder: %w", err)
		}
		e.tz = finder
	}
	return e, nil
}

// CalculateChart computes a full natal chart for a local date and time at
// the given coordinates. Longitude is east-positive.
func (e *Engine) CalculateChart(dateStr, timeStr string, lat, lon float64) (*Chart, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}

	utc, zoneName, err := localToUTC(dateStr, timeStr, lat, lon, e.tz)
	if err != nil {
		return nil, err
	}
	jd := ephemeris.JulianDayTime(utc)

	chart, err := chartForJD(jd, lat, lon)
	if err != nil {
		return nil, err
	}
	chart.DatetimeUTC = utc.Format("2006-01-02 15:04:05")
	chart.Timezone = zoneName
	chart.DatetimeLocal = fmt.Sprintf("%s %s", dateStr, timeStr)

	e.logger.Debug("chart calculated",
		slog.Float64("jd", jd),
		slog.String("timezone", zoneName),
		slog.Time("utc", utc))
	return chart, nil
}

// ChartAt computes positions and houses for an arbitrary UTC instant,
// used by transit and forecast calculations where no wall clock exists.
func (e *Engine) ChartAt(utc time.Time, lat, lon float64) (*Chart, error) {
	chart, err := chartForJD(ephemeris.JulianDayTime(utc), lat, lon)
	if err != nil {
		return nil, err
	}
	chart.DatetimeUTC = utc.Format("2006-01-02 15:04:05")
	chart.Timezone = "UTC"
	return chart, nil
}

func chartForJD(jd, lat, lon float64) (*Chart, error) {
	hd := calculateHouses(jd, lat, lon)
	cusps := make(map[string]float64, 12)
	for i := 1; i <= 12; i++ {
		cusps[houseKey(i)] = hd.cusps[i]
	}

	planets := make(map[string]PlanetPosition, len(ephemeris.ChartBodies))
	for _, body := range ephemeris.ChartBodies {
		pos, err := ephemeris.Compute(jd, body)
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", body, err)
		}
		dms := DecimalToDMS(pos.Longitude)
		planets[body.String()] = PlanetPosition{
			Longitude:    pos.Longitude,
			Speed:        pos.Speed,
			Distance:     pos.Distance,
			ZodiacSign:   dms.Sign,
			FormattedPos: dms.Formatted,
			House:        PlanetHouse(pos.Longitude, cusps),
		}
	}

	ascDMS := DecimalToDMS(hd.ascendant)
	mcDMS := DecimalToDMS(hd.mc)
	return &Chart{
		Planets: planets,
		Houses:  cusps,
		Angles: Angles{
			Ascendant:          hd.ascendant,
			MC:                 hd.mc,
			AscendantFormatted: ascDMS.Formatted,
			MCFormatted:        mcDMS.Formatted,
			AscendantSign:      ascDMS.Sign,
			MCSign:             mcDMS.Sign,
		},
		JulianDay: jd,
		Location:  Location{Latitude: lat, Longitude: lon},
	}, nil
}

// SynastryHouseOverlays maps another chart's planets into the natal
// chart's houses. The result keys are planet names, the values natal
// house numbers.
func SynastryHouseOverlays(natal, other *Chart) map[string]int {
	overlays := make(map[string]int, len(other.Planets))
	for name, pos := range other.Planets {
		overlays[name] = PlanetHouse(pos.Longitude, natal.Houses)
	}
	return overlays
}
