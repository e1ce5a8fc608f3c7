package config

import "time"

const (
	DefaultConfigFile         = "apicase.yaml"
	DefaultTestDataDir        = "test_data"
	DefaultTemplateDir        = "test_data/api/JsonRepository"
	DefaultSchemaDir          = "test_data/api/schemas"
	DefaultDynamicStringsDir  = "test_data/api/dynamic_strings"
	DefaultEnvironment        = "default"
	DefaultParallel           = 1
	DefaultTimeout            = 10 * time.Minute
	DefaultPollInterval       = time.Second
	DefaultPollTimeout        = 30 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultBurst              = 1
	EnvironmentOverrideEnvVar = "APICASE_ENV"
)

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() Config {
	return Config{
		TestDataDir:        DefaultTestDataDir,
		TemplateDir:        DefaultTemplateDir,
		SchemaDir:          DefaultSchemaDir,
		DynamicStringsDir:  DefaultDynamicStringsDir,
		Environment:        DefaultEnvironment,
		Parallel:           DefaultParallel,
		Timeout:            DefaultTimeout,
		PollInterval:       DefaultPollInterval,
		DefaultPollTimeout: DefaultPollTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		Burst:              DefaultBurst,
	}
}

// applyDefaults fills zero-valued fields from GetDefaultConfig.
func applyDefaults(cfg *Config) {
	def := GetDefaultConfig()
	if cfg.TestDataDir == "" {
		cfg.TestDataDir = def.TestDataDir
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = def.TemplateDir
	}
	if cfg.SchemaDir == "" {
		cfg.SchemaDir = def.SchemaDir
	}
	if cfg.DynamicStringsDir == "" {
		cfg.DynamicStringsDir = def.DynamicStringsDir
	}
	if cfg.Environment == "" {
		cfg.Environment = def.Environment
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = def.Parallel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.DefaultPollTimeout == 0 {
		cfg.DefaultPollTimeout = def.DefaultPollTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.Burst == 0 {
		cfg.Burst = def.Burst
	}
}
