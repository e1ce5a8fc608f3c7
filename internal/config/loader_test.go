package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apicase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvironmentOverrideEnvVar, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvironmentOverrideEnvVar, "")
	path := writeConfig(t, `
testDataDir: cases
parallel: 4
pollInterval: 250ms
requestsPerSecond: 5
reports:
  json: out/run.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "cases", cfg.TestDataDir)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 5.0, cfg.RequestsPerSecond)
	assert.Equal(t, "out/run.json", cfg.Reports.JSON)

	assert.Equal(t, DefaultTemplateDir, cfg.TemplateDir)
	assert.Equal(t, DefaultPollTimeout, cfg.DefaultPollTimeout)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, DefaultBurst, cfg.Burst)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv(EnvironmentOverrideEnvVar, "staging")
	path := writeConfig(t, "environment: qa\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "parallel: [not a number\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name: "zero parallel and negative rate",
			mutate: func(c *Config) {
				c.Parallel = 0
				c.RequestsPerSecond = -1
			},
			wantFields: []string{"parallel", "requestsPerSecond"},
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.RequestsPerSecond = 2
				c.Burst = 0
			},
			wantFields: []string{"burst"},
		},
		{
			name: "non-positive durations",
			mutate: func(c *Config) {
				c.PollInterval = 0
				c.RequestTimeout = -time.Second
			},
			wantFields: []string{"pollInterval", "requestTimeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			var fields []string
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}
