package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/ephemeris"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/scanner"
	"github.com/astromind-labs/astromind/internal/state"
	"github.com/astromind-labs/astromind/internal/testutil"
)

type tzStub string

func (z tzStub) GetTimezoneName(lng, lat float64) string { return string(z) }

type cannedAI struct {
	reply string
}

func (c cannedAI) Chat(ctx context.Context, system, user string) (string, error) {
	return c.reply, nil
}

type failingAI struct{}

func (failingAI) Chat(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("completion backend unavailable")
}

// stationEph parks every body at a fixed longitude and flips Mercury's
// direction at flipJD, so a scan across that day yields exactly one
// station event and nothing else.
type stationEph struct {
	flipJD float64
}

func (e stationEph) Compute(jd float64, b ephemeris.Body) (ephemeris.Position, error) {
	pos := ephemeris.Position{Speed: 1, Distance: 1}
	switch b {
	case ephemeris.Sun:
		pos.Longitude = 10
	case ephemeris.Moon:
		pos.Longitude = 100
	case ephemeris.Mercury:
		pos.Longitude = 230
		if jd >= e.flipJD {
			pos.Speed = -1
		}
	default:
		pos.Longitude = 230
	}
	return pos, nil
}

func newTestServer(t *testing.T) (*Server, state.Store) {
	t.Helper()

	eng, err := engine.New(engine.WithTimezoneLookup(tzStub("UTC")))
	require.NoError(t, err)

	st, err := state.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	t.Cleanup(func() { st.Close() })

	srv := New(Config{
		Engine: eng,
		Interp: interpreter.New(cannedAI{reply: "Интерпретация на картата."}),
		Store:  st,
		Port:   0,
		Logger: testutil.NewTestLogger(t),
	})
	srv.now = func() time.Time {
		return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	}
	return srv, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Astrology API")
}

func TestCalculateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/calculate", ChartRequest{
		Date: "2000-01-01", Time: "12:00", Lat: 51.48, Lon: 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var chart engine.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	require.Len(t, chart.Planets, 11)
	require.Equal(t, "Capricorn", chart.Planets["Sun"].ZodiacSign)
	require.Len(t, chart.Houses, 12)
}

func TestCalculateRejectsBadLatitude(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/calculate", ChartRequest{
		Date: "2000-01-01", Time: "12:00", Lat: 123, Lon: 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "detail")
}

func TestInterpretNatal(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Name: "Мария", Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InterpretationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Интерпретация на картата.", resp.Interpretation)
	require.NotNil(t, resp.NatalChart)
	require.Nil(t, resp.TransitChart)
	require.NotEmpty(t, resp.NatalAspects)
}

func TestInterpretWithPartnerAndTransit(t *testing.T) {
	plat, plon := 43.21, 27.91
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Name: "Мария", Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		PartnerName: "Иван", PartnerDate: "1988-11-02", PartnerTime: "17:15",
		PartnerLat: &plat, PartnerLon: &plon,
		TargetDate: "2024-06-01", TargetTime: "12:00",
		ReportType: "love",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InterpretationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.PartnerChart)
	require.NotNil(t, resp.TransitChart)
	require.NotEmpty(t, resp.PartnerNatalAspects)
}

func TestInterpretDynamicRequiresEndDate(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		IsDynamic: true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "end_date")
}

func TestInterpretRejectsUnknownReportType(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		ReportType: "astral",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterpretSpendsCoins(t *testing.T) {
	srv, st := newTestServer(t)
	user, err := st.CreateUser("maria@example.com", "hash", "Мария")
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		UserID: user.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := st.GetUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, state.SignupBonusCoins-InterpretCost, after.Coins)
}

func TestInterpretInsufficientCoins(t *testing.T) {
	srv, st := newTestServer(t)
	user, err := st.CreateUser("broke@example.com", "hash", "")
	require.NoError(t, err)
	_, err = st.SpendCoins(user.ID, state.SignupBonusCoins)
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		UserID: user.ID,
	})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestInterpretBadInputDoesNotCharge(t *testing.T) {
	srv, st := newTestServer(t)
	user, err := st.CreateUser("maria@example.com", "hash", "Мария")
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "not-a-date", Time: "08:30", Lat: 42.7, Lon: 23.32,
		UserID: user.ID,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	after, err := st.GetUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, state.SignupBonusCoins, after.Coins)
}

func TestInterpretRefundsWhenCompletionFails(t *testing.T) {
	srv, st := newTestServer(t)
	srv.interp = interpreter.New(failingAI{})
	user, err := st.CreateUser("maria@example.com", "hash", "Мария")
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		UserID: user.ID,
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	after, err := st.GetUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, state.SignupBonusCoins, after.Coins)
}

func TestInterpretStreamBadInputDoesNotCharge(t *testing.T) {
	srv, st := newTestServer(t)
	user, err := st.CreateUser("maria@example.com", "hash", "Мария")
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret-stream", ChartRequest{
		Date: "not-a-date", Time: "08:30", Lat: 42.7, Lon: 23.32,
		IsDynamic: true, TargetDate: "2024-03-05", EndDate: "2024-03-08",
		UserID: user.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 1)
	require.Equal(t, "error", events[0]["type"])

	after, err := st.GetUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, state.SignupBonusCoins, after.Coins)
}

func TestCreateUserEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/users", CreateUserRequest{
		Email: "ivan@example.com", Password: "secret", FullName: "Иван",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user state.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, state.SignupBonusCoins, user.Coins)
	require.NotContains(t, rec.Body.String(), "secret")

	rec = doJSON(t, h, http.MethodPost, "/users", CreateUserRequest{
		Email: "ivan@example.com", Password: "other",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartPersistence(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/charts", ChartRequest{
		Name: "Мария", Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved state.ChartRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)

	rec = doJSON(t, h, http.MethodGet, "/charts/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []state.ChartRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodGet, "/charts/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/report", ReportRequest{
		UserName: "Мария Иванова", BirthDate: "1990-05-10", BirthTime: "08:30",
		BirthCity: "София", ReportType: "general",
		MonthlyResults: []MonthlyResult{{Month: "Март 2024", Text: "Спокоен месец."}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, rec.Body.String(), "# АСТРОЛОГИЧЕН ДОКЛАД")
	require.Contains(t, rec.Body.String(), "Спокоен месец.")
}

func TestInterpretStream(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.newScanner = func() *scanner.Scanner {
		return scanner.New(scanner.WithPositioner(stationEph{
			flipJD: ephemeris.JulianDay(2024, 3, 6),
		}))
	}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret-stream", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
		IsDynamic: true, TargetDate: "2024-03-05", EndDate: "2024-03-08",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	events := parseSSE(t, rec.Body.String())
	require.GreaterOrEqual(t, len(events), 4)
	require.Equal(t, "start", events[0]["type"])
	require.Equal(t, float64(1), events[0]["total_months"])
	require.Equal(t, "Март 2024", events[0]["start_month"])
	require.Equal(t, "month_start", events[1]["type"])
	require.Equal(t, "month_complete", events[2]["type"])
	require.Equal(t, "Интерпретация на картата.", events[2]["text"])
	require.Equal(t, "complete", events[len(events)-1]["type"])
}

func TestInterpretStreamRequiresDynamic(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/interpret-stream", ChartRequest{
		Date: "1990-05-10", Time: "08:30", Lat: 42.7, Lon: 23.32,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 1)
	require.Equal(t, "error", events[0]["type"])
}

func parseSSE(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if !strings.HasPrefix(chunk, "data: ") {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/calculate", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
