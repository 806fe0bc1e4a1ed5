package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/astromind-labs/astromind/internal/cli/config"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/scanner"
)

// ScanOptions holds options for the scan command.
type ScanOptions struct {
	From string
	To   string
	Max  int
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	birth := &birthFlags{}
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a period for astrological events",
		Long: `Scan a date range for retrograde stations, lunations, eclipses,
sign ingresses and transits to the natal chart.

Events are filtered by importance; eclipses and stations rank above
routine transits.`,
		Example: `  # Events for the second half of 2025
  astromind scan --date 1990-05-10 --time 08:30 --lat 42.70 --lon 23.32 \
      --from 2025-07-01 --to 2025-12-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, birth, opts)
		},
	}

	birth.register(cmd)
	cmd.Flags().StringVar(&opts.From, "from", "", "Scan start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Scan end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Max, "max", scanner.DefaultMaxEvents, "Maximum number of events to keep")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runScan(cmd *cobra.Command, birth *birthFlags, opts *ScanOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	natal, err := eng.CalculateChart(birth.Date, birth.Time, birth.Lat, birth.Lon)
	if err != nil {
		return err
	}

	sc := scanner.New(scanner.WithLogger(logger))
	events, err := sc.Scan(natal, opts.From, opts.To, nil)
	if err != nil {
		return err
	}
	events = scanner.Filter(events, opts.Max)

	if cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), events)
	}

	w := cmd.OutOrStdout()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Type", "Description"})
	for _, e := range events {
		t.AppendRow(table.Row{e.Date, e.Type, e.Description})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d events)\n", len(events))
	return nil
}
