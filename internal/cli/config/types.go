// Package config provides configuration management for the Astromind CLI.
//
// Configuration is loaded from, in ascending precedence: built-in
// defaults, an astromind.yaml file, ASTROMIND_ environment variables,
// and command-line flags.
package config

// Default configuration values.
const (
	DefaultPort        = 8000
	DefaultDatabaseURL = "astromind.db"
	DefaultLanguage    = "bg"
	DefaultOutput      = "table"
)

// Config holds all CLI configuration options.
type Config struct {
	// Port the API server listens on.
	Port int `koanf:"port"`
	// DatabaseURL is a SQLite file path or a postgres:// URL.
	DatabaseURL string `koanf:"database_url"`
	// APIKey authenticates against the completions API. Falls back to
	// the OPENAI_API_KEY environment variable.
	APIKey string `koanf:"api_key"`
	// APIBaseURL overrides the completions endpoint.
	APIBaseURL string `koanf:"api_base_url"`
	// Model selects the completion model.
	Model string `koanf:"model"`
	// Language of generated interpretations.
	Language string `koanf:"language"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}
