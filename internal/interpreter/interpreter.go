// Package interpreter renders charts and timelines into narrative
// readings through an OpenAI-compatible completion API.
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/astromind-labs/astromind/internal/aspects"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/scanner"
)

// completer is the surface of Client the interpreter needs; tests
// substitute a canned implementation.
type completer interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Request carries everything one interpretation needs.
type Request struct {
	Natal   *engine.Chart
	Transit *engine.Chart
	Partner *engine.Chart

	UserName    string
	PartnerName string
	Question    string
	TargetDate  string
	Language    string
	ReportType  string

	// Events is the scanned timeline for dynamic forecasts.
	Events []scanner.Event
}

// Interpreter builds prompts and drives the completion client.
type Interpreter struct {
	client completer
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the interpreter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// New builds an Interpreter on top of a completion client.
func New(client completer, opts ...Option) *Interpreter {
	i := &Interpreter{client: client, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret produces a single reading for a natal chart, optionally
// against a transit chart or a partner chart.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (string, error) {
	if req.Natal == nil {
		return "", fmt.Errorf("natal chart is required")
	}
	if !ValidReportType(req.ReportType) {
		return "", fmt.Errorf("unknown report type %q", req.ReportType)
	}

	system := i.systemPrompt(req)
	user, err := i.userPrompt(req)
	if err != nil {
		return "", err
	}

	i.logger.Debug("requesting interpretation",
		slog.String("report_type", req.ReportType),
		slog.Bool("partner", req.Partner != nil),
		slog.Bool("transit", req.Transit != nil))
	text, err := i.client.Chat(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("interpretation request: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// MonthSection is one month's worth of a dynamic forecast.
type MonthSection struct {
	Month string
	Text  string
}

// StreamForecast splits the request's timeline into months, interprets
// each month separately and emits the sections in chronological order.
// Returning an error from emit aborts the stream.
func (i *Interpreter) StreamForecast(ctx context.Context, req Request, emit func(MonthSection) error) error {
	if req.Natal == nil {
		return fmt.Errorf("natal chart is required")
	}
	if !ValidReportType(req.ReportType) {
		return fmt.Errorf("unknown report type %q", req.ReportType)
	}

	months, keys := groupByMonth(scanner.Filter(req.Events, scanner.DefaultMaxEvents))
	if len(keys) == 0 {
		return fmt.Errorf("no timeline events to interpret")
	}

	for _, month := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := i.monthlyChunk(ctx, req, month, months[month])
		if err != nil {
			// One failed month must not sink the whole forecast.
			i.logger.Warn("monthly chunk failed", slog.String("month", month), slog.Any("error", err))
			text = fmt.Sprintf("*Грешка при генериране на прогноза за %s*", month)
		}
		if err := emit(MonthSection{Month: month, Text: text}); err != nil {
			return err
		}
	}
	return nil
}

// Forecast runs StreamForecast and joins the sections into one document.
func (i *Interpreter) Forecast(ctx context.Context, req Request) (string, error) {
	var b strings.Builder
	err := i.StreamForecast(ctx, req, func(s MonthSection) error {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s", s.Month, s.Text)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func (i *Interpreter) systemPrompt(req Request) string {
	var persona string
	switch {
	case len(req.Events) > 0:
		persona = forecastTemplate(req.ReportType)
	case req.Partner != nil:
		persona = synastryPersona(req.ReportType)
	default:
		persona = natalTemplate(req.ReportType)
	}

	var b strings.Builder
	b.WriteString(persona)

	if rulers := engine.HouseRulers(req.Natal.Houses); len(rulers) > 0 {
		b.WriteString("\n\nHOUSE RULERS (CALCULATED):\n")
		writeRulers(&b, rulers)
	}
	if req.Partner != nil {
		if rulers := engine.HouseRulers(req.Partner.Houses); len(rulers) > 0 {
			b.WriteString("\nPARTNER HOUSE RULERS (CALCULATED):\n")
			writeRulers(&b, rulers)
		}
	}
	if req.ReportType == ReportHealth {
		if cusp, ok := req.Natal.Houses["House6"]; ok {
			sign, ruler := engine.RulerFromCusp(cusp)
			fmt.Fprintf(&b, "\n6th HOUSE: %s, ruled by %s. Give its condition special weight.\n", sign, ruler)
		}
	}

	return withLanguageRules(b.String(), req.Language)
}

func (i *Interpreter) userPrompt(req Request) (string, error) {
	var b strings.Builder

	userLabel := "NATAL CHART"
	if req.UserName != "" {
		userLabel = strings.ToUpper(req.UserName) + " NATAL CHART"
	}
	if err := writeJSONSection(&b, userLabel, req.Natal); err != nil {
		return "", err
	}

	natalAspects := aspects.Natal(req.Natal, false)
	if err := writeJSONSection(&b, "NATAL ASPECTS (CALCULATED)", natalAspects); err != nil {
		return "", err
	}
	b.WriteString("These aspects are pre-calculated. Use them directly; do not recalculate or assume aspects.\n\n")

	if req.Partner != nil {
		partnerLabel := "PARTNER NATAL CHART"
		if req.PartnerName != "" {
			partnerLabel = strings.ToUpper(req.PartnerName) + " NATAL CHART"
		}
		if err := writeJSONSection(&b, partnerLabel, req.Partner); err != nil {
			return "", err
		}
		syn := aspects.Synastry(req.Natal, req.Partner, false)
		if err := writeJSONSection(&b, "SYNASTRY ASPECTS (CALCULATED)", syn); err != nil {
			return "", err
		}
		overlays := engine.SynastryHouseOverlays(req.Natal, req.Partner)
		if err := writeJSONSection(&b, "PARTNER PLANETS IN USER HOUSES", overlays); err != nil {
			return "", err
		}
	}

	if req.Transit != nil {
		if err := writeJSONSection(&b, "TRANSIT CHART "+req.TargetDate, req.Transit); err != nil {
			return "", err
		}
		tr := aspects.Transits(req.Natal, req.Transit, false)
		if err := writeJSONSection(&b, "TRANSIT ASPECTS (CALCULATED)", tr); err != nil {
			return "", err
		}
	}

	if req.Question != "" {
		fmt.Fprintf(&b, "User Question: %s\n\n", req.Question)
	}
	fmt.Fprintf(&b, "Provide a detailed %s reading based on the data above.", reportTypeOrGeneral(req.ReportType))
	return b.String(), nil
}

func (i *Interpreter) monthlyChunk(ctx context.Context, req Request, month string, events []scanner.Event) (string, error) {
	system := i.systemPrompt(req)

	var b strings.Builder
	fmt.Fprintf(&b, "PERIOD: %s\n", month)
	fmt.Fprintf(&b, "FOCUS: %s\n\n", strings.ToUpper(reportTypeOrGeneral(req.ReportType)))

	userLabel := "NATAL CHART"
	if req.UserName != "" {
		userLabel = strings.ToUpper(req.UserName) + " NATAL CHART"
	}
	if err := writeJSONSection(&b, userLabel, req.Natal); err != nil {
		return "", err
	}
	natalAspects := aspects.Natal(req.Natal, false)
	if err := writeJSONSection(&b, "NATAL ASPECTS (CALCULATED)", natalAspects); err != nil {
		return "", err
	}

	if req.Partner != nil {
		partnerLabel := "PARTNER NATAL CHART"
		if req.PartnerName != "" {
			partnerLabel = strings.ToUpper(req.PartnerName) + " NATAL CHART"
		}
		if err := writeJSONSection(&b, partnerLabel, req.Partner); err != nil {
			return "", err
		}
	}

	if err := writeJSONSection(&b, "TIMELINE EVENTS FOR "+month, events); err != nil {
		return "", err
	}
	if req.Question != "" {
		fmt.Fprintf(&b, "User Question: %s\n\n", req.Question)
	}
	fmt.Fprintf(&b, "Provide a detailed forecast for %s, focusing on %s themes.",
		month, reportTypeOrGeneral(req.ReportType))

	text, err := i.client.Chat(ctx, system, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ForecastMonths reports the YYYY-MM keys StreamForecast will walk for
// the given timeline, in order. Callers use it to announce progress
// before the sections arrive.
func ForecastMonths(events []scanner.Event) []string {
	_, keys := groupByMonth(scanner.Filter(events, scanner.DefaultMaxEvents))
	return keys
}

// groupByMonth buckets events by their YYYY-MM prefix and returns the
// buckets plus the sorted month keys.
func groupByMonth(events []scanner.Event) (map[string][]scanner.Event, []string) {
	months := make(map[string][]scanner.Event)
	for _, e := range events {
		if len(e.Date) < 7 {
			continue
		}
		key := e.Date[:7]
		months[key] = append(months[key], e)
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return months, keys
}

func writeJSONSection(b *strings.Builder, label string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.ToLower(label), err)
	}
	fmt.Fprintf(b, "--- %s ---\n%s\n\n", label, data)
	return nil
}

func writeRulers(b *strings.Builder, rulers map[string]string) {
	keys := make([]string, 0, len(rulers))
	for k := range rulers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %s\n", k, rulers[k])
	}
}

func reportTypeOrGeneral(t string) string {
	if t == "" {
		return ReportGeneral
	}
	return t
}
