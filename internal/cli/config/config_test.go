package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "astromind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9100\ndatabase_url: charts.db\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "charts.db", cfg.DatabaseURL)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "astromind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9100\n"), 0o600))

	t.Setenv("ASTROMIND_PORT", "9200")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	t.Setenv("ASTROMIND_PORT", "9200")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("database", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "9300", "--database", "flag.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Port)
	assert.Equal(t, "flag.db", cfg.DatabaseURL)
}

func TestLoadConfigAPIKeyFallback(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-fallback", cfg.APIKey)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "astromind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: ${MY_SECRET_KEY}\n"), 0o600))

	t.Setenv("MY_SECRET_KEY", "sk-12345")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-12345", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Port: 8000, DatabaseURL: "astromind.db", Output: "table"},
		},
		{
			name:    "port out of range",
			cfg:     Config{Port: 0, DatabaseURL: "astromind.db", Output: "table"},
			wantErr: "port",
		},
		{
			name:    "empty database url",
			cfg:     Config{Port: 8000, Output: "table"},
			wantErr: "database_url",
		},
		{
			name:    "unknown output",
			cfg:     Config{Port: 8000, DatabaseURL: "astromind.db", Output: "xml"},
			wantErr: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
