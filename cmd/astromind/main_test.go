package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astromind-labs/astromind/internal/cli"
	"github.com/astromind-labs/astromind/internal/cli/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Astromind v")
}

func TestHelpListsCommands(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "chart", "scan", "interpret", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestChartCommandRequiresBirthData(t *testing.T) {
	_, err := runCLI(t, "chart")
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "horoscope")
	require.Error(t, err)
}

func TestRejectsBadOutputFormat(t *testing.T) {
	_, err := runCLI(t, "-o", "xml", "version")
	require.Error(t, err)
}
