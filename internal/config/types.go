package config

import "time"

// Config is the top-level configuration structure for apicase.
type Config struct {
	// TestDataDir is walked recursively for .csv and .xlsx test cases.
	TestDataDir string `yaml:"testDataDir,omitempty"`
	// TemplateDir holds JSON body templates referenced by BODY JsonRepository.
	TemplateDir string `yaml:"templateDir,omitempty"`
	// SchemaDir holds schema documents referenced by RESPONSE:SCHEMA.
	SchemaDir string `yaml:"schemaDir,omitempty"`
	// DynamicStringsDir holds <environment>/<file>.properties lookup tables.
	DynamicStringsDir string `yaml:"dynamicStringsDir,omitempty"`
	// Environment selects the dynamic strings subdirectory.
	Environment string `yaml:"environment,omitempty"`

	Parallel int           `yaml:"parallel,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	FailFast bool          `yaml:"failFast,omitempty"`

	PollInterval       time.Duration `yaml:"pollInterval,omitempty"`
	DefaultPollTimeout time.Duration `yaml:"defaultPollTimeout,omitempty"`
	RequestTimeout     time.Duration `yaml:"requestTimeout,omitempty"`

	// RequestsPerSecond limits outgoing requests across all workers. Zero disables the limit.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
	Burst             int     `yaml:"burst,omitempty"`

	Reports ReportsConfig `yaml:"reports,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// ReportsConfig names the report files written at the end of a run.
type ReportsConfig struct {
	JSON     string `yaml:"json,omitempty"`
	Workbook string `yaml:"workbook,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}
