package testing

import (
	"encoding/json"
	"sync"
	"time"
)

// StructuredReporter captures results for programmatic access
type StructuredReporter interface {
	TestReporter
	// GetCurrentSuiteResult returns the suite seen so far, or nil before ReportStart
	GetCurrentSuiteResult() *TestSuiteResult
	// GetResultsAsJSON returns the current suite as indented JSON
	GetResultsAsJSON() (string, error)
}

// structuredReporter implements TestReporter for MCP server mode
// It captures all reporting data without writing to stdio
type structuredReporter struct {
	mu          sync.RWMutex
	running     map[string]time.Time
	suiteResult *TestSuiteResult
}

// NewStructuredReporter creates a reporter that captures structured data without stdio output
func NewStructuredReporter() StructuredReporter {
	return &structuredReporter{
		running: make(map[string]time.Time),
	}
}

// ReportStart is called when test execution begins
func (r *structuredReporter) ReportStart(config TestConfiguration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = make(map[string]time.Time)
	r.suiteResult = &TestSuiteResult{
		StartTime:     time.Now(),
		CaseResults:   make([]TestCaseResult, 0),
		Configuration: config,
	}
}

// ReportCaseStart is called when a test case begins
func (r *structuredReporter) ReportCaseStart(tc TestCase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[tc.File] = time.Now()
}

// ReportCaseResult is called when a test case completes
func (r *structuredReporter) ReportCaseResult(result TestCaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.running, result.TestCase.File)
	if r.suiteResult == nil {
		return
	}
	r.suiteResult.CaseResults = append(r.suiteResult.CaseResults, result)
	switch result.Result {
	case ResultPassed:
		r.suiteResult.PassedCases++
	case ResultFailed:
		r.suiteResult.FailedCases++
	case ResultSkipped:
		r.suiteResult.SkippedCases++
	case ResultError:
		r.suiteResult.ErrorCases++
	}
	r.suiteResult.TotalCases = len(r.suiteResult.CaseResults)
}

// ReportSuiteResult is called when all tests complete
func (r *structuredReporter) ReportSuiteResult(suiteResult TestSuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suiteResult = &suiteResult
}

// SetParallelMode is a no-op: results are captured, not printed
func (r *structuredReporter) SetParallelMode(bool) {}

// GetCurrentSuiteResult returns a copy of the current test suite result
func (r *structuredReporter) GetCurrentSuiteResult() *TestSuiteResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.suiteResult == nil {
		return nil
	}

	result := *r.suiteResult
	result.CaseResults = make([]TestCaseResult, len(r.suiteResult.CaseResults))
	copy(result.CaseResults, r.suiteResult.CaseResults)
	return &result
}

// GetResultsAsJSON returns the current results as JSON
func (r *structuredReporter) GetResultsAsJSON() (string, error) {
	result := r.GetCurrentSuiteResult()
	if result == nil {
		return `{"status": "no_results", "message": "No test results available"}`, nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
