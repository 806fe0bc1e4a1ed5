package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astromind-labs/astromind/internal/aspects"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/scanner"
	"github.com/astromind-labs/astromind/internal/state"
)

// ChartRequest is the shared request body for calculation and
// interpretation. Longitude is east-positive.
type ChartRequest struct {
	Name string `json:"name,omitempty"`
	Date string `json:"date"`
	Time string `json:"time"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	Question   string `json:"question,omitempty"`
	ReportType string `json:"report_type,omitempty"`

	// Dynamic forecast mode scans target_date..end_date for events.
	IsDynamic bool   `json:"is_dynamic,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	// Transit analysis; target coordinates relocate the transit chart.
	TargetDate string   `json:"target_date,omitempty"`
	TargetTime string   `json:"target_time,omitempty"`
	TargetLat  *float64 `json:"target_lat,omitempty"`
	TargetLon  *float64 `json:"target_lon,omitempty"`

	// Partner birth data for synastry.
	PartnerName string   `json:"partner_name,omitempty"`
	PartnerDate string   `json:"partner_date,omitempty"`
	PartnerTime string   `json:"partner_time,omitempty"`
	PartnerLat  *float64 `json:"partner_lat,omitempty"`
	PartnerLon  *float64 `json:"partner_lon,omitempty"`

	// UserID charges the interpretation to an account.
	UserID string `json:"user_id,omitempty"`
}

func (r *ChartRequest) hasPartner() bool {
	return r.PartnerDate != "" && r.PartnerTime != "" && r.PartnerLat != nil && r.PartnerLon != nil
}

// InterpretationResponse pairs the computed charts with the reading.
type InterpretationResponse struct {
	NatalChart          *engine.Chart    `json:"natal_chart"`
	TransitChart        *engine.Chart    `json:"transit_chart,omitempty"`
	PartnerChart        *engine.Chart    `json:"partner_chart,omitempty"`
	Interpretation      string           `json:"interpretation"`
	NatalAspects        []aspects.Aspect `json:"natal_aspects,omitempty"`
	PartnerNatalAspects []aspects.Aspect `json:"partner_natal_aspects,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Astrology API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /calculate":        "compute a natal chart",
			"POST /interpret":        "compute charts and get an AI reading",
			"POST /interpret-stream": "stream a dynamic forecast month by month",
			"POST /report":           "render a Markdown report",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := s.engine.CalculateChart(req.Date, req.Time, req.Lat, req.Lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Невалидни входни данни: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.interp == nil {
		writeError(w, http.StatusInternalServerError, "AI интерпретаторът не е конфигуриран")
		return
	}
	if !interpreter.ValidReportType(req.ReportType) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("непознат тип доклад %q", req.ReportType))
		return
	}
	if req.IsDynamic && req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "end_date е задължително когато is_dynamic=true")
		return
	}

	natal, err := s.engine.CalculateChart(req.Date, req.Time, req.Lat, req.Lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Невалидни входни данни: %v", err))
		return
	}

	var partner *engine.Chart
	if req.hasPartner() {
		partner, err = s.engine.CalculateChart(req.PartnerDate, req.PartnerTime, *req.PartnerLat, *req.PartnerLon)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Невалидни данни за партньора: %v", err))
			return
		}
	}

	ireq := interpreter.Request{
		Natal:       natal,
		Partner:     partner,
		UserName:    req.Name,
		PartnerName: req.PartnerName,
		Question:    req.Question,
		TargetDate:  req.TargetDate,
		Language:    "bg",
		ReportType:  req.ReportType,
	}

	var transit *engine.Chart
	switch {
	case req.IsDynamic:
		events, err := s.scanTimeline(&req, natal, partner)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Грешка при сканиране на периода: %v", err))
			return
		}
		ireq.Events = events
	case req.TargetDate != "":
		transit, err = s.transitChart(&req)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Невалидни транзитни данни: %v", err))
			return
		}
		ireq.Transit = transit
	}

	// Charge only once the input is known to be good, and refund when
	// the completion itself fails so no coin buys an error response.
	if req.UserID != "" {
		if err := s.chargeUser(req.UserID); err != nil {
			s.writeChargeError(w, err)
			return
		}
	}

	var text string
	if req.IsDynamic {
		text, err = s.interp.Forecast(r.Context(), ireq)
	} else {
		text, err = s.interp.Interpret(r.Context(), ireq)
	}
	if err != nil {
		if req.UserID != "" {
			s.refundUser(req.UserID)
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Грешка при обработка: %v", err))
		return
	}

	resp := InterpretationResponse{
		NatalChart:     natal,
		TransitChart:   transit,
		PartnerChart:   partner,
		Interpretation: text,
		NatalAspects:   aspects.Natal(natal, false),
	}
	if partner != nil {
		resp.PartnerNatalAspects = aspects.Natal(partner, false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// scanTimeline runs the period scanner for a dynamic forecast. The scan
// starts at target_date, or today when absent; it never starts at the
// birth date.
func (s *Server) scanTimeline(req *ChartRequest, natal, partner *engine.Chart) ([]scanner.Event, error) {
	start := req.TargetDate
	if start == "" {
		start = s.now().Format("2006-01-02")
	}
	events, err := s.newScanner().Scan(natal, start, req.EndDate, partner)
	if err != nil {
		return nil, err
	}
	return scanner.Filter(events, scanner.DefaultMaxEvents), nil
}

// transitChart computes the chart for the requested forecast moment,
// relocated to the target coordinates when provided.
func (s *Server) transitChart(req *ChartRequest) (*engine.Chart, error) {
	transitTime := req.TargetTime
	if transitTime == "" {
		transitTime = s.now().Format("15:04:05")
	}
	lat, lon := req.Lat, req.Lon
	if req.TargetLat != nil {
		lat = *req.TargetLat
	}
	if req.TargetLon != nil {
		lon = *req.TargetLon
	}
	return s.engine.CalculateChart(req.TargetDate, transitTime, lat, lon)
}

// chargeUser deducts the interpretation cost from the account.
func (s *Server) chargeUser(userID string) error {
	if s.store == nil {
		return fmt.Errorf("no store configured")
	}
	_, err := s.store.SpendCoins(userID, InterpretCost)
	return err
}

// refundUser returns the interpretation cost after a failed completion.
func (s *Server) refundUser(userID string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.AddCoins(userID, InterpretCost); err != nil {
		s.logger.Error("refund failed", "user_id", userID, "error", err)
	}
}

func (s *Server) writeChargeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrInsufficientCoins):
		writeError(w, http.StatusPaymentRequired, "Недостатъчно кредити")
	case errors.Is(err, state.ErrNotFound):
		writeError(w, http.StatusBadRequest, "непознат потребител")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// CreateUserRequest registers an account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "persistence is not configured")
		return
	}
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email и password са задължителни")
		return
	}
	hash, err := state.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.store.CreateUser(req.Email, hash, req.FullName)
	if err != nil {
		if errors.Is(err, state.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "имейлът вече е регистриран")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "persistence is not configured")
		return
	}
	var req ChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := s.engine.CalculateChart(req.Date, req.Time, req.Lat, req.Lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Невалидни входни данни: %v", err))
		return
	}
	data, err := json.Marshal(chart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rec := &state.ChartRecord{
		UserID:    req.UserID,
		Name:      req.Name,
		Date:      req.Date,
		Time:      req.Time,
		Latitude:  req.Lat,
		Longitude: req.Lon,
		Data:      data,
	}
	if err := s.store.SaveChart(rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "persistence is not configured")
		return
	}
	rec, err := s.store.GetChart(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			writeError(w, http.StatusNotFound, "картата не е намерена")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "persistence is not configured")
		return
	}
	recs, err := s.store.ListCharts(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*state.ChartRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the {"detail": ...} error shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
