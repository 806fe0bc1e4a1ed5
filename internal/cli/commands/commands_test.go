package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommandOutput(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "Astromind v1.2.3")
}

func TestChartCommandRendersTable(t *testing.T) {
	out, err := execute(t, NewChartCommand(),
		"--name", "Maria",
		"--date", "1990-05-10", "--time", "08:30",
		"--lat", "42.70", "--lon", "23.32")
	require.NoError(t, err)

	assert.Contains(t, out, "Natal chart for Maria")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "Ascendant:")
	assert.Contains(t, out, "House")
}

func TestChartCommandRejectsBadDate(t *testing.T) {
	_, err := execute(t, NewChartCommand(),
		"--date", "not-a-date", "--time", "08:30",
		"--lat", "42.70", "--lon", "23.32")
	require.Error(t, err)
}

func TestScanCommand(t *testing.T) {
	out, err := execute(t, NewScanCommand(),
		"--date", "1990-05-10", "--time", "08:30",
		"--lat", "42.70", "--lon", "23.32",
		"--from", "2025-01-01", "--to", "2025-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "events)")
}

func TestScanCommandRejectsReversedRange(t *testing.T) {
	_, err := execute(t, NewScanCommand(),
		"--date", "1990-05-10", "--time", "08:30",
		"--lat", "42.70", "--lon", "23.32",
		"--from", "2025-02-01", "--to", "2025-01-01")
	require.Error(t, err)
}

func TestInterpretCommandRequiresAPIKey(t *testing.T) {
	_, err := execute(t, NewInterpretCommand(),
		"--date", "1990-05-10", "--time", "08:30",
		"--lat", "42.70", "--lon", "23.32")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
