package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astromind-labs/astromind/internal/cli/config"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/state"
)

// InterpretOptions holds options for the interpret command.
type InterpretOptions struct {
	ReportType string
	Question   string
	TargetDate string
	Save       bool
}

// NewInterpretCommand creates the interpret command.
func NewInterpretCommand() *cobra.Command {
	birth := &birthFlags{}
	opts := &InterpretOptions{}

	cmd := &cobra.Command{
		Use:   "interpret",
		Short: "Generate an AI reading for a natal chart",
		Long: `Calculate a natal chart and generate an AI interpretation for it.

Requires a completions API key (--api-key or $OPENAI_API_KEY). With
--target-date the reading also covers the transits for that day. With
--save the chart and the reading are stored in the database.`,
		Example: `  # General natal reading
  astromind interpret --date 1990-05-10 --time 08:30 --lat 42.70 --lon 23.32

  # Career reading with transits, saved to the database
  astromind interpret --date 1990-05-10 --time 08:30 --lat 42.70 --lon 23.32 \
      --report-type career --target-date 2026-01-15 --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInterpret(cmd, birth, opts)
		},
	}

	birth.register(cmd)
	cmd.Flags().StringVar(&opts.ReportType, "report-type", "general", "Report type (general|health|career|love|money|karmic)")
	cmd.Flags().StringVar(&opts.Question, "question", "", "A question to focus the reading on")
	cmd.Flags().StringVar(&opts.TargetDate, "target-date", "", "Date for transit analysis (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Save the chart and reading to the database")
	return cmd
}

func runInterpret(cmd *cobra.Command, birth *birthFlags, opts *InterpretOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured: set --api-key or $OPENAI_API_KEY")
	}
	if !interpreter.ValidReportType(opts.ReportType) {
		return fmt.Errorf("unknown report type %q", opts.ReportType)
	}

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	natal, err := eng.CalculateChart(birth.Date, birth.Time, birth.Lat, birth.Lon)
	if err != nil {
		return err
	}

	req := interpreter.Request{
		Natal:      natal,
		UserName:   birth.Name,
		Question:   opts.Question,
		TargetDate: opts.TargetDate,
		Language:   cfg.Language,
		ReportType: opts.ReportType,
	}
	if opts.TargetDate != "" {
		transit, err := eng.CalculateChart(opts.TargetDate, "12:00", birth.Lat, birth.Lon)
		if err != nil {
			return fmt.Errorf("invalid target date: %w", err)
		}
		req.Transit = transit
	}

	client, err := newChatClient(cfg)
	if err != nil {
		return err
	}
	interp := interpreter.New(client, interpreter.WithLogger(logger))

	text, err := interp.Interpret(cmd.Context(), req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)

	if opts.Save {
		return saveReading(cfg, birth, opts, natal, text)
	}
	return nil
}

// saveReading persists the chart and its interpretation.
func saveReading(cfg *config.Config, birth *birthFlags, opts *InterpretOptions, natal *engine.Chart, text string) error {
	st, err := state.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	data, err := json.Marshal(natal)
	if err != nil {
		return err
	}
	rec := &state.ChartRecord{
		Name:      birth.Name,
		Date:      birth.Date,
		Time:      birth.Time,
		Latitude:  birth.Lat,
		Longitude: birth.Lon,
		Data:      data,
	}
	if err := st.SaveChart(rec); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return st.SaveReading(&state.Reading{
		ChartID:    rec.ID,
		ReportType: opts.ReportType,
		Content:    text,
	})
}
