package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/astromind-labs/astromind/internal/cli/config"
	"github.com/astromind-labs/astromind/internal/engine"
)

// birthFlags is the birth data shared by chart, scan and interpret.
type birthFlags struct {
	Name string
	Date string
	Time string
	Lat  float64
	Lon  float64
}

func (b *birthFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.Name, "name", "", "Name of the chart owner")
	cmd.Flags().StringVar(&b.Date, "date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&b.Time, "time", "", "Birth time (HH:MM)")
	cmd.Flags().Float64Var(&b.Lat, "lat", 0, "Birth latitude (north positive)")
	cmd.Flags().Float64Var(&b.Lon, "lon", 0, "Birth longitude (east positive)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

// chartPlanetOrder fixes the listing order in table output.
var chartPlanetOrder = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto", "Node",
}

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	birth := &birthFlags{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Calculate a natal chart",
		Long: `Calculate a natal chart: planetary positions, Placidus house cusps
and chart angles for a birth moment and place.

The birth time is local to the coordinates; the timezone is resolved
automatically.`,
		Example: `  # Chart for a birth in Sofia
  astromind chart --date 1990-05-10 --time 08:30 --lat 42.70 --lon 23.32

  # Chart as JSON
  astromind chart --date 1990-05-10 --time 08:30 --lat 42.70 --lon 23.32 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChart(cmd, birth)
		},
	}

	birth.register(cmd)
	return cmd
}

func runChart(cmd *cobra.Command, birth *birthFlags) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	chart, err := eng.CalculateChart(birth.Date, birth.Time, birth.Lat, birth.Lon)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), chart)
	}
	renderChart(cmd.OutOrStdout(), birth.Name, chart)
	return nil
}

func renderChart(w io.Writer, name string, chart *engine.Chart) {
	if name != "" {
		_, _ = fmt.Fprintf(w, "Natal chart for %s\n", name)
	}
	_, _ = fmt.Fprintf(w, "%s %s (%s UTC)\n\n", chart.DatetimeLocal, chart.Timezone, chart.DatetimeUTC)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Planet", "Position", "House", "Motion"})
	for _, name := range chartPlanetOrder {
		pos, ok := chart.Planets[name]
		if !ok {
			continue
		}
		motion := "direct"
		if pos.Retrograde() {
			motion = "retrograde"
		}
		t.AppendRow(table.Row{name, pos.FormattedPos, pos.House, motion})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "\nAscendant: %s\nMC:        %s\n\n",
		chart.Angles.AscendantFormatted, chart.Angles.MCFormatted)

	ht := table.NewWriter()
	ht.SetOutputMirror(w)
	ht.SetStyle(table.StyleLight)
	ht.AppendHeader(table.Row{"House", "Cusp"})
	for i := 1; i <= 12; i++ {
		cusp, ok := chart.Houses[fmt.Sprintf("House%d", i)]
		if !ok {
			continue
		}
		ht.AppendRow(table.Row{i, engine.DecimalToDMS(cusp).Formatted})
	}
	ht.Render()
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
