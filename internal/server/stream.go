package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/astromind-labs/astromind/internal/aspects"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
)

// bgMonths translates month numbers for the stream metadata.
var bgMonths = map[string]string{
	"01": "Януари", "02": "Февруари", "03": "Март", "04": "Април",
	"05": "Май", "06": "Юни", "07": "Юли", "08": "Август",
	"09": "Септември", "10": "Октомври", "11": "Ноември", "12": "Декември",
}

// monthDisplay turns "2025-03" into "Март 2025".
func monthDisplay(key string) string {
	if len(key) != 7 {
		return key
	}
	name, ok := bgMonths[key[5:7]]
	if !ok {
		name = key[5:7]
	}
	return name + " " + key[:4]
}

// sseWriter frames JSON payloads as server-sent events and flushes
// after every event so proxies do not buffer the stream.
type sseWriter struct {
	w     http.ResponseWriter
	flush http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flush, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return &sseWriter{w: w, flush: flush}, true
}

func (s *sseWriter) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flush.Flush()
	return nil
}

func (s *sseWriter) sendError(message string) {
	_ = s.send(map[string]string{"type": "error", "message": message})
}

// handleInterpretStream runs a dynamic forecast and streams it month by
// month. Every event is a JSON object with a "type" field: start,
// month_start, month_complete, complete, or error.
func (s *Server) handleInterpretStream(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, ok := newSSEWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if !req.IsDynamic {
		sse.sendError("Този endpoint изисква is_dynamic=true")
		return
	}
	if req.EndDate == "" {
		sse.sendError("end_date е задължително за динамична прогноза")
		return
	}
	if s.interp == nil {
		sse.sendError("AI интерпретаторът не е конфигуриран")
		return
	}
	if !interpreter.ValidReportType(req.ReportType) {
		sse.sendError(fmt.Sprintf("непознат тип доклад %q", req.ReportType))
		return
	}

	natal, err := s.engine.CalculateChart(req.Date, req.Time, req.Lat, req.Lon)
	if err != nil {
		sse.sendError(fmt.Sprintf("Невалидни входни данни: %v", err))
		return
	}

	var partner *engine.Chart
	if req.hasPartner() {
		partner, err = s.engine.CalculateChart(req.PartnerDate, req.PartnerTime, *req.PartnerLat, *req.PartnerLon)
		if err != nil {
			sse.sendError(fmt.Sprintf("Невалидни данни за партньора: %v", err))
			return
		}
	}

	events, err := s.scanTimeline(&req, natal, partner)
	if err != nil {
		sse.sendError(fmt.Sprintf("Грешка при сканиране на периода: %v", err))
		return
	}

	months := interpreter.ForecastMonths(events)
	if len(months) == 0 {
		sse.sendError("Няма събития за анализиране в избрания период")
		return
	}

	// The charge waits until the forecast is known to be runnable, and
	// is returned if the stream dies before delivering a single month.
	if req.UserID != "" {
		if err := s.chargeUser(req.UserID); err != nil {
			sse.sendError(err.Error())
			return
		}
	}

	start := map[string]any{
		"type":          "start",
		"total_months":  len(months),
		"start_month":   monthDisplay(months[0]),
		"end_month":     monthDisplay(months[len(months)-1]),
		"natal_chart":   natal,
		"natal_aspects": aspects.Natal(natal, false),
	}
	if partner != nil {
		start["partner_chart"] = partner
		start["partner_natal_aspects"] = aspects.Natal(partner, false)
	}
	if err := sse.send(start); err != nil {
		return
	}

	ireq := interpreter.Request{
		Natal:       natal,
		Partner:     partner,
		UserName:    req.Name,
		PartnerName: req.PartnerName,
		Question:    req.Question,
		Language:    "bg",
		ReportType:  req.ReportType,
		Events:      events,
	}

	// StreamForecast only reports finished months, so the month_start
	// events are interleaved here from the known month order.
	if err := sse.send(map[string]any{
		"type": "month_start", "month": monthDisplay(months[0]),
		"index": 0, "total": len(months),
	}); err != nil {
		return
	}
	delivered := 0
	idx := 0
	err = s.interp.StreamForecast(r.Context(), ireq, func(sec interpreter.MonthSection) error {
		if err := sse.send(map[string]any{
			"type": "month_complete", "month": monthDisplay(sec.Month),
			"text": sec.Text, "index": idx, "total": len(months),
		}); err != nil {
			return err
		}
		delivered++
		idx++
		if idx < len(months) {
			return sse.send(map[string]any{
				"type": "month_start", "month": monthDisplay(months[idx]),
				"index": idx, "total": len(months),
			})
		}
		return nil
	})
	if err != nil {
		if req.UserID != "" && delivered == 0 {
			s.refundUser(req.UserID)
		}
		sse.sendError(fmt.Sprintf("Грешка при обработка: %v", err))
		return
	}
	_ = sse.send(map[string]string{"type": "complete"})
}
