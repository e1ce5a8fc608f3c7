package testing

import (
	"context"
	"time"

	"apicase/internal/execution"
	"apicase/internal/schema"
)

// TestResult represents the result of test execution
type TestResult string

const (
	// ResultPassed indicates the test passed successfully
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates at least one soft assertion failed
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the test was not run
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates a pipeline step aborted the test
	ResultError TestResult = "ERROR"
)

// ExecutionMode represents the mode of test execution
type ExecutionMode string

const (
	// ExecutionModeCLI represents command line interface execution
	ExecutionModeCLI ExecutionMode = "cli"
	// ExecutionModeMCPServer represents MCP server execution via stdio
	ExecutionModeMCPServer ExecutionMode = "mcp-server"
)

// TestLogger provides centralized logging for test execution
type TestLogger interface {
	// Debug logs debug-level messages (only shown when debug=true)
	Debug(format string, args ...interface{})
	// Info logs info-level messages (shown when verbose=true or debug=true)
	Info(format string, args ...interface{})
	// Error logs error-level messages (always shown)
	Error(format string, args ...interface{})
	// IsDebugEnabled returns whether debug logging is enabled
	IsDebugEnabled() bool
	// IsVerboseEnabled returns whether verbose logging is enabled
	IsVerboseEnabled() bool
}

// TestConfiguration defines the overall test execution configuration
type TestConfiguration struct {
	// Timeout is the overall run timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// Parallel is the worker pool size
	Parallel int `json:"parallel" yaml:"parallel"`
	// FailFast stops scheduling new cases after the first failure
	FailFast bool `json:"fail_fast" yaml:"failFast"`
	// Verbose enables per-case output
	Verbose bool `json:"verbose" yaml:"verbose"`
	// Debug enables request level output
	Debug bool `json:"debug" yaml:"debug"`
	// Names restricts the run to cases whose name starts with one of the prefixes
	Names []string `json:"names,omitempty" yaml:"names,omitempty"`
	// Run keeps only cases whose name matches one of the patterns
	Run []string `json:"run,omitempty" yaml:"run,omitempty"`
	// Skip drops cases whose name matches one of the patterns
	Skip []string `json:"skip,omitempty" yaml:"skip,omitempty"`
	// TestDataDir is walked for test case files
	TestDataDir string `json:"test_data_dir" yaml:"testDataDir"`
	// ReportJSON is the path of the JSON suite report
	ReportJSON string `json:"report_json,omitempty" yaml:"reportJSON,omitempty"`
	// ReportWorkbook is the path of the xlsx result workbook
	ReportWorkbook string `json:"report_workbook,omitempty" yaml:"reportWorkbook,omitempty"`
}

// TestCase identifies one directive file.
type TestCase struct {
	// Name is the file name up to the first underscore
	Name string `json:"name"`
	// File is the path of the directive file
	File string `json:"file"`
	// Category is the capitalised name of the parent directory
	Category string `json:"category"`
}

// TestCaseResult represents the result of running one test case
type TestCaseResult struct {
	TestCase  TestCase      `json:"test_case"`
	Result    TestResult    `json:"result"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	// ExecutionID is the ID of the execution context used for the run
	ExecutionID string `json:"execution_id,omitempty"`

	Failures []execution.AssertionFailure `json:"failures,omitempty"`
	Notes    []string                     `json:"notes,omitempty"`
	// Error is the step-tagged error that aborted the case
	Error string `json:"error,omitempty"`
	// Step names the pipeline step that produced Error
	Step string `json:"step,omitempty"`

	Dependencies []string `json:"dependencies,omitempty"`

	Method       string         `json:"method,omitempty"`
	Endpoint     string         `json:"endpoint,omitempty"`
	StatusCode   int            `json:"status_code,omitempty"`
	PollAttempts int            `json:"poll_attempts,omitempty"`
	ConditionMet bool           `json:"condition_met"`
	TimedOut     bool           `json:"timed_out,omitempty"`
	Schema       *schema.Result `json:"schema,omitempty"`
}

// TestSuiteResult represents the result of a test suite execution
type TestSuiteResult struct {
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	Duration      time.Duration     `json:"duration"`
	TotalCases    int               `json:"total_cases"`
	PassedCases   int               `json:"passed_cases"`
	FailedCases   int               `json:"failed_cases"`
	ErrorCases    int               `json:"error_cases"`
	SkippedCases  int               `json:"skipped_cases"`
	CaseResults   []TestCaseResult  `json:"case_results"`
	Configuration TestConfiguration `json:"configuration"`
}

// Succeeded reports whether no case failed or errored.
func (s *TestSuiteResult) Succeeded() bool {
	return s.FailedCases == 0 && s.ErrorCases == 0
}

// TestRunner runs discovered test cases
type TestRunner interface {
	// Run executes the cases selected by config
	Run(ctx context.Context, config TestConfiguration, cases []TestCase) (*TestSuiteResult, error)
	// RunCase executes a single case with validation enabled
	RunCase(ctx context.Context, tc TestCase) TestCaseResult
}

// TestCaseLoader discovers test cases
type TestCaseLoader interface {
	// LoadTestCases walks the test data directory
	LoadTestCases() ([]TestCase, error)
	// Find returns the first case whose file name starts with prefix
	Find(prefix string) (TestCase, error)
	// FilterTestCases applies name prefixes and run/skip patterns
	FilterTestCases(cases []TestCase, config TestConfiguration) ([]TestCase, error)
}

// TestReporter reports progress and results
type TestReporter interface {
	// ReportStart is called when the run begins
	ReportStart(config TestConfiguration)
	// ReportCaseStart is called before a case runs
	ReportCaseStart(tc TestCase)
	// ReportCaseResult is called as soon as a case finishes
	ReportCaseResult(result TestCaseResult)
	// ReportSuiteResult is called once at the end of the run
	ReportSuiteResult(result TestSuiteResult)
	// SetParallelMode switches off per-case start lines
	SetParallelMode(parallel bool)
}
