// Package scanner walks a date range day by day and reports astrological
// events: retrograde and direct stations, lunations, eclipses, sign
// ingresses, and transits to a natal chart.
package scanner

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/ephemeris"
)

// Event types.
const (
	TypeRetrograde = "RETROGRADE"
	TypeEclipse    = "ECLIPSE"
	TypeLunation   = "LUNATION"
	TypeIngress    = "INGRESS"
	TypeTransit    = "TRANSIT"
)

// Event is one dated occurrence found during a scan. Fields beyond Date,
// Type and Description apply only to some event types.
type Event struct {
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Planet        string  `json:"planet,omitempty"`
	Direction     string  `json:"direction,omitempty"`
	Sign          string  `json:"sign,omitempty"`
	Position      string  `json:"position,omitempty"`
	Description   string  `json:"description,omitempty"`
	Target        string  `json:"target,omitempty"`
	NatalPlanet   string  `json:"natal_planet,omitempty"`
	NatalPosition string  `json:"natal_position,omitempty"`
	Aspect        string  `json:"aspect,omitempty"`
	AngleDeg      float64 `json:"angle_deg,omitempty"`
	Orb           float64 `json:"orb,omitempty"`
	IsApplying    bool    `json:"is_applying,omitempty"`
	HouseImpact   int     `json:"house_impact,omitempty"`
}

// retrogradePlanets can turn retrograde; the Sun and Moon never do.
var retrogradePlanets = []ephemeris.Body{
	ephemeris.Mercury, ephemeris.Venus, ephemeris.Mars,
	ephemeris.Jupiter, ephemeris.Saturn, ephemeris.Uranus,
	ephemeris.Neptune, ephemeris.Pluto,
}

// transitPlanets are slow enough for day-resolution transit detection.
var transitPlanets = []ephemeris.Body{
	ephemeris.Mars, ephemeris.Jupiter, ephemeris.Saturn,
	ephemeris.Uranus, ephemeris.Neptune, ephemeris.Pluto,
}

var ingressPlanets = []ephemeris.Body{
	ephemeris.Sun, ephemeris.Moon, ephemeris.Mercury, ephemeris.Venus,
	ephemeris.Mars, ephemeris.Jupiter, ephemeris.Saturn,
	ephemeris.Uranus, ephemeris.Neptune, ephemeris.Pluto,
}

var natalTargets = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
}

var transitAspects = []struct {
	name  string
	angle float64
}{
	{"Conjunction", 0},
	{"Sextile", 60},
	{"Square", 90},
	{"Trine", 120},
	{"Opposition", 180},
}

const (
	maxOrbApplying   = 1.5
	maxOrbSeparating = 1.0

	// A new moon within this distance of a lunar node is a solar
	// eclipse somewhere on Earth; the analytic ecliptic limit.
	solarEclipseLimit = 18.5
	// Lunar eclipses need the full moon closer to the node.
	lunarEclipseLimit = 12.8

	newMoonMaxSep  = 13.0
	fullMoonMinSep = 167.0
)

// positioner computes a body position for a Julian day. Satisfied by the
// analytic ephemeris; tests substitute scripted motion.
type positioner interface {
	Compute(jd float64, b ephemeris.Body) (ephemeris.Position, error)
}

type ephemerisPositioner struct{}

func (ephemerisPositioner) Compute(jd float64, b ephemeris.Body) (ephemeris.Position, error) {
	return ephemeris.Compute(jd, b)
}

// Scanner finds events across a period. One Scanner handles one scan;
// it carries per-scan state (previous speeds and signs).
type Scanner struct {
	logger *slog.Logger
	eph    positioner

	prevSpeeds map[ephemeris.Body]float64
	prevSigns  map[ephemeris.Body]int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the scan logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithPositioner overrides the ephemeris used for positions.
func WithPositioner(p positioner) Option {
	return func(s *Scanner) { s.eph = p }
}

// New builds a Scanner backed by the analytic ephemeris.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		logger:     slog.New(slog.DiscardHandler),
		eph:        ephemerisPositioner{},
		prevSpeeds: make(map[ephemeris.Body]float64),
		prevSigns:  make(map[ephemeris.Body]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks each day from start to end inclusive (dates as YYYY-MM-DD)
// and returns the events found, sorted by date then type. partner may be
// nil; when present its transits are reported with Target "Partner".
func (s *Scanner) Scan(natal *engine.Chart, start, end string, partner *engine.Chart) ([]Event, error) {
	startDt, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endDt, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if endDt.Before(startDt) {
		return nil, fmt.Errorf("end date %s before start date %s", end, start)
	}

	s.seedPreviousDay(ephemeris.JulianDayTime(startDt.AddDate(0, 0, -1)))

	var events []Event
	for day := startDt; !day.After(endDt); day = day.AddDate(0, 0, 1) {
		jd := ephemeris.JulianDayTime(day)
		date := day.Format("2006-01-02")

		events = s.detectStations(jd, date, events)
		events = s.detectLunations(jd, date, events)
		events = s.detectIngresses(jd, date, events)
		events = s.detectTransits(jd, date, natal, "User", events)
		if partner != nil {
			events = s.detectTransits(jd, date, partner, "Partner", events)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Type < events[j].Type
	})

	s.logger.Info("scan complete",
		slog.String("start", start),
		slog.String("end", end),
		slog.Int("events", len(events)))
	return events, nil
}

// seedPreviousDay initializes station and ingress state from the day
// before the scan so events on the first day are detected.
func (s *Scanner) seedPreviousDay(jd float64) {
	for _, body := range retrogradePlanets {
		pos, err := s.eph.Compute(jd, body)
		if err != nil {
			s.prevSpeeds[body] = 0
			continue
		}
		s.prevSpeeds[body] = pos.Speed
	}
	for _, body := range ingressPlanets {
		pos, err := s.eph.Compute(jd, body)
		if err != nil {
			s.prevSigns[body] = -1
			continue
		}
		s.prevSigns[body] = signIndex(pos.Longitude)
	}
}

func (s *Scanner) detectStations(jd float64, date string, events []Event) []Event {
	for _, body := range retrogradePlanets {
		pos, err := s.eph.Compute(jd, body)
		if err != nil {
			s.logger.Warn("station check failed", slog.String("planet", body.String()), slog.Any("error", err))
			continue
		}

		prev, seen := s.prevSpeeds[body]
		s.prevSpeeds[body] = pos.Speed
		if !seen {
			continue
		}

		var direction string
		switch {
		case prev > 0 && pos.Speed < 0:
			direction = "retrograde"
		case prev < 0 && pos.Speed > 0:
			direction = "direct"
		default:
			continue
		}

		dms := engine.DecimalToDMS(pos.Longitude)
		verb := "Retrograde"
		if direction == "direct" {
			verb = "Direct"
		}
		desc := fmt.Sprintf("%s turns %s in %s", body, verb, dms.Sign)
		events = append(events, Event{
			Date:        date,
			Type:        TypeRetrograde,
			Planet:      body.String(),
			Direction:   direction,
			Sign:        dms.Sign,
			Position:    dms.Formatted,
			Description: desc,
		})
	}
	return events
}

// detectLunations reports new and full moons, upgraded to eclipses when
// the moon is close enough to a lunar node for the syzygy to fall within
// the ecliptic limits.
func (s *Scanner) detectLunations(jd float64, date string, events []Event) []Event {
	sun, err := s.eph.Compute(jd, ephemeris.Sun)
	if err != nil {
		return events
	}
	moon, err := s.eph.Compute(jd, ephemeris.Moon)
	if err != nil {
		return events
	}
	node, err := s.eph.Compute(jd, ephemeris.MeanNode)
	if err != nil {
		return events
	}

	sep := separation(sun.Longitude, moon.Longitude)
	nodeDist := nodeDistance(moon.Longitude, node.Longitude)

	switch {
	case sep < newMoonMaxSep:
		dms := engine.DecimalToDMS(sun.Longitude)
		if nodeDist < solarEclipseLimit {
			events = append(events, Event{
				Date:        date,
				Type:        TypeEclipse,
				Planet:      "Sun/Moon",
				Sign:        dms.Sign,
				Position:    dms.Formatted,
				Description: fmt.Sprintf("Solar Eclipse in %s", dms.Sign),
			})
			return events
		}
		events = append(events, Event{
			Date:        date,
			Type:        TypeLunation,
			Planet:      "Sun/Moon",
			Sign:        dms.Sign,
			Position:    dms.Formatted,
			Description: fmt.Sprintf("New Moon in %s", dms.Sign),
		})
	case sep > fullMoonMinSep:
		dms := engine.DecimalToDMS(moon.Longitude)
		if nodeDist < lunarEclipseLimit {
			events = append(events, Event{
				Date:        date,
				Type:        TypeEclipse,
				Planet:      "Sun/Moon",
				Sign:        dms.Sign,
				Position:    dms.Formatted,
				Description: fmt.Sprintf("Lunar Eclipse in %s", dms.Sign),
			})
			return events
		}
		events = append(events, Event{
			Date:        date,
			Type:        TypeLunation,
			Planet:      "Sun/Moon",
			Sign:        dms.Sign,
			Position:    dms.Formatted,
			Description: fmt.Sprintf("Full Moon in %s", dms.Sign),
		})
	}
	return events
}

func (s *Scanner) detectIngresses(jd float64, date string, events []Event) []Event {
	for _, body := range ingressPlanets {
		pos, err := s.eph.Compute(jd, body)
		if err != nil {
			s.logger.Warn("ingress check failed", slog.String("planet", body.String()), slog.Any("error", err))
			continue
		}

		idx := signIndex(pos.Longitude)
		prev, seen := s.prevSigns[body]
		s.prevSigns[body] = idx
		if !seen || prev < 0 || idx == prev {
			continue
		}

		dms := engine.DecimalToDMS(pos.Longitude)
		events = append(events, Event{
			Date:        date,
			Type:        TypeIngress,
			Planet:      body.String(),
			Sign:        dms.Sign,
			Position:    dms.Formatted,
			Description: fmt.Sprintf("%s enters %s", body, dms.Sign),
		})
	}
	return events
}

// detectTransits checks the slow movers against the chart's natal
// planets. Applying aspects get a wider orb than separating ones; the
// previous day's position decides which side of exact we are on.
func (s *Scanner) detectTransits(jd float64, date string, natal *engine.Chart, target string, events []Event) []Event {
	for _, body := range transitPlanets {
		pos, err := s.eph.Compute(jd, body)
		if err != nil {
			s.logger.Warn("transit check failed", slog.String("planet", body.String()), slog.Any("error", err))
			continue
		}
		prevPos, prevErr := s.eph.Compute(jd-1, body)

		for _, natalName := range natalTargets {
			natalPlanet, ok := natal.Planets[natalName]
			if !ok {
				continue
			}

			var prevLon *float64
			if prevErr == nil {
				prevLon = &prevPos.Longitude
			}
			hit := matchTransitAspect(pos.Longitude, natalPlanet.Longitude, prevLon)
			if hit == nil {
				continue
			}

			transitDMS := engine.DecimalToDMS(pos.Longitude)
			natalDMS := engine.DecimalToDMS(natalPlanet.Longitude)
			house := engine.PlanetHouse(pos.Longitude, natal.Houses)
			events = append(events, Event{
				Date:          date,
				Type:          TypeTransit,
				Target:        target,
				Planet:        body.String(),
				NatalPlanet:   natalName,
				NatalPosition: natalDMS.Formatted,
				Aspect:        hit.name,
				AngleDeg:      hit.angle,
				Orb:           math.Round(hit.orb*100) / 100,
				IsApplying:    hit.applying,
				Position:      transitDMS.Formatted,
				HouseImpact:   house,
				Description:   fmt.Sprintf("Transit %s %s natal %s (House %d)", body, hit.name, natalName, house),
			})
		}
	}
	return events
}

type transitHit struct {
	name     string
	angle    float64
	orb      float64
	applying bool
}

// matchTransitAspect returns the tightest aspect within orb between a
// transit and a natal longitude, or nil. Without a previous position the
// stricter separating orb applies.
func matchTransitAspect(transitLon, natalLon float64, prevTransitLon *float64) *transitHit {
	sep := separation(transitLon, natalLon)

	var best *transitHit
	for _, a := range transitAspects {
		orb := math.Abs(sep - a.angle)

		applying := false
		maxOrb := maxOrbSeparating
		if prevTransitLon != nil {
			prevSep := separation(*prevTransitLon, natalLon)
			applying = math.Abs(prevSep-a.angle) > orb
			if applying {
				maxOrb = maxOrbApplying
			}
		}

		if orb <= maxOrb && (best == nil || orb < best.orb) {
			best = &transitHit{name: a.name, angle: a.angle, orb: orb, applying: applying}
		}
	}
	return best
}

func signIndex(lon float64) int {
	return int(ephemeris.Normalize(lon)/30) % 12
}

func separation(lon1, lon2 float64) float64 {
	diff := math.Mod(math.Abs(lon1-lon2), 360)
	return math.Min(diff, 360-diff)
}

// nodeDistance is the smallest angle from the moon to either lunar node.
func nodeDistance(moonLon, nodeLon float64) float64 {
	d := separation(moonLon, nodeLon)
	return math.Min(d, 180-d)
}
