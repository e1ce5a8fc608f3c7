package testing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"apicase/internal/config"
	"apicase/internal/dispatch"
	"apicase/internal/extension"
	"apicase/internal/repository"
	"apicase/internal/request"
	"apicase/internal/schema"
	"apicase/internal/validate"
	"apicase/internal/value"
)

// FrameworkOptions tunes NewTestFrameworkForMode.
type FrameworkOptions struct {
	Verbose bool
	Debug   bool
	// Quiet selects the failures-only console reporter
	Quiet bool
	// Fs defaults to the OS filesystem
	Fs afero.Fs
	// Registry receives the built-in extensions. Hosts register their own
	// modules on it before or after the framework is created.
	Registry *extension.Registry
	// Transport replaces the dispatcher's HTTP transports
	Transport http.RoundTripper
	// Output receives console output in CLI mode. Defaults to stdout.
	Output io.Writer
	// LineOutput selects the line reporter for non-verbose console output
	LineOutput bool
	// Reporters are notified before the built-in reporters in CLI mode
	Reporters []TestReporter
}

// TestFramework holds all components needed for testing
type TestFramework struct {
	Runner   TestRunner
	Loader   TestCaseLoader
	Reporter TestReporter
	Logger   TestLogger
	Engine   Engine
	Registry *extension.Registry
	// Metrics is the registry holding the dispatcher collectors
	Metrics *prometheus.Registry

	templates *repository.Repository
	schemas   *repository.Repository
}

// NewTestFramework creates a CLI framework from cfg
func NewTestFramework(cfg config.Config, opts FrameworkOptions) (*TestFramework, error) {
	return NewTestFrameworkForMode(ExecutionModeCLI, cfg, opts)
}

// NewTestFrameworkForMode creates a fully configured test framework for the specified execution mode
//
// Execution Modes:
//   - ExecutionModeCLI: console reporting plus any report files configured in cfg
//   - ExecutionModeMCPServer: structured reporting that captures data without stdio output
//     to avoid contaminating the MCP protocol stream
func NewTestFrameworkForMode(mode ExecutionMode, cfg config.Config, opts FrameworkOptions) (*TestFramework, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Registry == nil {
		opts.Registry = extension.NewRegistry()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var logger TestLogger
	var reporter TestReporter
	switch mode {
	case ExecutionModeCLI:
		logger = NewWriterLogger(opts.Output, os.Stderr, opts.Verbose, opts.Debug)
		console := NewTestReporterWithWriter(opts.Output, opts.Verbose, opts.Debug)
		switch {
		case opts.Quiet:
			console = NewQuietReporter(opts.Output)
		case opts.LineOutput && !opts.Verbose:
			console = NewLineReporter(opts.Output, opts.Debug)
		}
		reporters := append([]TestReporter{}, opts.Reporters...)
		reporters = append(reporters, console, NewFileReporter(opts.Fs, cfg.Reports.JSON, cfg.Reports.Workbook))
		reporter = NewMultiReporter(reporters...)
	case ExecutionModeMCPServer:
		logger = NewSilentLogger(opts.Verbose, opts.Debug)
		reporter = NewStructuredReporter()
	default:
		return nil, fmt.Errorf("unknown execution mode %q", mode)
	}

	extension.RegisterBuiltins(opts.Registry, extension.BuiltinOptions{
		Fs:                opts.Fs,
		DynamicStringsDir: cfg.DynamicStringsDir,
		Environment:       cfg.Environment,
	})

	metrics := prometheus.NewRegistry()
	templates := repository.New(opts.Fs, cfg.TemplateDir, ".json")
	schemas := repository.New(opts.Fs, cfg.SchemaDir, schema.Extensions...)
	resolver := value.NewResolver(opts.Registry)

	engine := Engine{
		Fs:       opts.Fs,
		Resolver: resolver,
		Builder:  request.NewBuilder(resolver, templates),
		Dispatcher: dispatch.New(dispatch.Options{
			RequestTimeout:    cfg.RequestTimeout,
			PollInterval:      cfg.PollInterval,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			Metrics:           dispatch.NewMetrics(metrics),
			Transport:         opts.Transport,
		}),
		Validator:          validate.New(resolver),
		Schemas:            schema.NewValidator(schemas),
		DefaultPollTimeout: cfg.DefaultPollTimeout,
	}
	if engine.DefaultPollTimeout <= 0 {
		engine.DefaultPollTimeout = config.DefaultPollTimeout
	}

	loader := NewTestCaseLoader(opts.Fs, cfg.TestDataDir, logger)
	runner := NewTestRunner(engine, loader, reporter, logger)

	return &TestFramework{
		Runner:    runner,
		Loader:    loader,
		Reporter:  reporter,
		Logger:    logger,
		Engine:    engine,
		Registry:  opts.Registry,
		Metrics:   metrics,
		templates: templates,
		schemas:   schemas,
	}, nil
}

// Invalidate drops cached templates and schema documents
func (tf *TestFramework) Invalidate() {
	tf.templates.Invalidate()
	tf.schemas.Invalidate()
}

// TestConfigurationFromConfig builds a run configuration from cfg
func TestConfigurationFromConfig(cfg config.Config) TestConfiguration {
	return TestConfiguration{
		Timeout:        cfg.Timeout,
		Parallel:       cfg.Parallel,
		FailFast:       cfg.FailFast,
		TestDataDir:    cfg.TestDataDir,
		ReportJSON:     cfg.Reports.JSON,
		ReportWorkbook: cfg.Reports.Workbook,
	}
}

// ValidateConfiguration validates a test configuration
func ValidateConfiguration(config TestConfiguration) error {
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if config.Parallel < 1 {
		return fmt.Errorf("parallel workers must be at least 1")
	}
	if _, err := compilePatterns(config.Run); err != nil {
		return err
	}
	if _, err := compilePatterns(config.Skip); err != nil {
		return err
	}
	return nil
}

// RunSuite loads every test case and runs those selected by config.
func (tf *TestFramework) RunSuite(ctx context.Context, config TestConfiguration) (*TestSuiteResult, error) {
	cases, err := tf.Loader.LoadTestCases()
	if err != nil {
		return nil, err
	}
	return tf.Runner.Run(ctx, config, cases)
}
