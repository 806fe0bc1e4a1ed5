// Package commands implements the Astromind subcommands.
package commands

import (
	"github.com/astromind-labs/astromind/internal/cli/config"
)

// getConfig returns the loaded configuration, or defaults when a
// command runs without the root command's PersistentPreRunE (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Port:        config.DefaultPort,
		DatabaseURL: config.DefaultDatabaseURL,
		Language:    config.DefaultLanguage,
		Output:      config.DefaultOutput,
	}
}
