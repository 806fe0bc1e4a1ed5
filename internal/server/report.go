package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/astromind-labs/astromind/internal/aspects"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/report"
)

// ReportRequest carries a finished forecast for document rendering.
type ReportRequest struct {
	UserName   string `json:"user_name"`
	BirthDate  string `json:"birth_date"`
	BirthTime  string `json:"birth_time"`
	BirthCity  string `json:"birth_city"`
	ReportType string `json:"report_type"`

	NatalChart   *engine.Chart    `json:"natal_chart,omitempty"`
	NatalAspects []aspects.Aspect `json:"natal_aspects,omitempty"`

	MonthlyResults []MonthlyResult `json:"monthly_results"`
}

// MonthlyResult is one month's interpretation as the client received
// it from the stream.
type MonthlyResult struct {
	Month string `json:"month"`
	Text  string `json:"text"`
}

// handleReport renders the forecast into a downloadable Markdown
// document.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months := make([]interpreter.MonthSection, 0, len(req.MonthlyResults))
	for _, m := range req.MonthlyResults {
		months = append(months, interpreter.MonthSection{Month: m.Month, Text: m.Text})
	}

	doc := report.Render(report.Data{
		UserName:     req.UserName,
		BirthDate:    req.BirthDate,
		BirthTime:    req.BirthTime,
		BirthPlace:   req.BirthCity,
		ReportType:   req.ReportType,
		NatalChart:   req.NatalChart,
		NatalAspects: req.NatalAspects,
		Months:       months,
	})

	name := req.UserName
	if name == "" {
		name = "Report"
	}
	filename := fmt.Sprintf("Astrology_Report_%s_%s.md",
		strings.ReplaceAll(name, " ", "_"), s.now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	// Cyrillic names need the RFC 5987 filename* form.
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
