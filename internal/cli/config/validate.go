package config

import "fmt"

var validOutputs = map[string]bool{
	"table": true,
	"json":  true,
}

// Validate checks a loaded configuration for values no command could
// work with.
func Validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range [1, 65535]", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("unknown output format %q (want table or json)", cfg.Output)
	}
	return nil
}
