package testing

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// testReporter implements the TestReporter interface for the console
type testReporter struct {
	out          io.Writer
	verbose      bool
	debug        bool
	parallelMode bool
	// lineMode prints each case as one complete line once it finishes
	lineMode bool

	mu sync.Mutex

	passed  func(a ...interface{}) string
	failed  func(a ...interface{}) string
	errored func(a ...interface{}) string
	skipped func(a ...interface{}) string
}

// NewTestReporter creates a console reporter writing to stdout
func NewTestReporter(verbose, debug bool) TestReporter {
	return NewTestReporterWithWriter(os.Stdout, verbose, debug)
}

// NewTestReporterWithWriter creates a console reporter writing to out
func NewTestReporterWithWriter(out io.Writer, verbose, debug bool) TestReporter {
	return &testReporter{
		out:     out,
		verbose: verbose,
		debug:   debug,
		passed:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		failed:  color.New(color.FgRed, color.Bold).SprintFunc(),
		errored: color.New(color.FgMagenta, color.Bold).SprintFunc(),
		skipped: color.New(color.FgYellow).SprintFunc(),
	}
}

// NewLineReporter creates a console reporter that never leaves a line open
// while a case runs, so that output can share the terminal with a spinner.
func NewLineReporter(out io.Writer, debug bool) TestReporter {
	r := NewTestReporterWithWriter(out, false, debug).(*testReporter)
	r.lineMode = true
	return r
}

// SetParallelMode disables start lines, which would interleave between workers
func (r *testReporter) SetParallelMode(parallel bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parallelMode = parallel
}

// ReportStart is called when test execution begins
func (r *testReporter) ReportStart(config TestConfiguration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printf("🧪 Starting apicase test run\n")
	if r.verbose {
		r.printf("\n⚙️  Configuration:\n")
		r.printf("   • Test data: %s\n", stringOrDefault(config.TestDataDir, "."))
		r.printf("   • Names: %s\n", stringOrDefault(strings.Join(config.Names, ", "), "all"))
		r.printf("   • Parallel workers: %d\n", config.Parallel)
		r.printf("   • Fail fast: %t\n", config.FailFast)
		r.printf("   • Debug mode: %t\n", r.debug)
		r.printf("   • Timeout: %v\n", config.Timeout)
		if config.ReportJSON != "" {
			r.printf("   • JSON report: %s\n", config.ReportJSON)
		}
		if config.ReportWorkbook != "" {
			r.printf("   • Workbook report: %s\n", config.ReportWorkbook)
		}
		r.printf("\n")
	}
}

// ReportCaseStart is called when a test case begins
func (r *testReporter) ReportCaseStart(tc TestCase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.parallelMode || r.lineMode {
		return
	}
	if r.verbose {
		r.printf("🎯 Starting test case: %s (%s)\n", tc.Name, tc.Category)
		r.printf("   📄 File: %s\n", tc.File)
		return
	}
	r.printf("🎯 %s... ", tc.Name)
}

// ReportCaseResult is called when a test case completes
func (r *testReporter) ReportCaseResult(result TestCaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbol := r.getResultSymbol(result.Result)
	duration := result.Duration.Round(time.Millisecond)

	switch {
	case r.verbose:
		r.printf("%s %s: %s (%v)\n", symbol, result.TestCase.Name, r.colorize(result.Result), duration)
		if result.Method != "" {
			r.printf("   🌐 %s %s → %d\n", result.Method, result.Endpoint, result.StatusCode)
		}
		if result.PollAttempts > 1 || result.TimedOut {
			r.printf("   🔄 Poll attempts: %d (condition met: %t)\n", result.PollAttempts, result.ConditionMet)
		}
		if len(result.Dependencies) > 0 {
			r.printf("   🔗 Dependencies: %s\n", strings.Join(result.Dependencies, ", "))
		}
		r.printDetails(result)
		r.printf("\n")
	case r.parallelMode || r.lineMode || result.Result == ResultSkipped:
		r.printf("🎯 %s... %s (%v)\n", result.TestCase.Name, symbol, duration)
		r.printDetails(result)
	default:
		r.printf("%s (%v)\n", symbol, duration)
		r.printDetails(result)
	}
}

func (r *testReporter) printDetails(result TestCaseResult) {
	if result.Error != "" {
		r.printf("   ❌ Error: %s\n", result.Error)
	}
	for _, f := range result.Failures {
		r.printf("   ❌ %s\n", f.String())
	}
	if r.debug {
		for _, note := range result.Notes {
			r.printf("   📝 %s\n", note)
		}
	}
}

// ReportSuiteResult is called when all tests complete
func (r *testReporter) ReportSuiteResult(suiteResult TestSuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printf("\n🏁 Test Suite Complete\n")
	r.printf("⏱️  Duration: %v\n", suiteResult.Duration.Round(time.Millisecond))

	if len(suiteResult.CaseResults) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{
			text.FgHiCyan.Sprint("NAME"),
			text.FgHiCyan.Sprint("CATEGORY"),
			text.FgHiCyan.Sprint("RESULT"),
			text.FgHiCyan.Sprint("STATUS"),
			text.FgHiCyan.Sprint("ATTEMPTS"),
			text.FgHiCyan.Sprint("FAILURES"),
			text.FgHiCyan.Sprint("DURATION"),
		})
		for _, cr := range suiteResult.CaseResults {
			status := "-"
			if cr.StatusCode > 0 {
				status = fmt.Sprint(cr.StatusCode)
			}
			t.AppendRow(table.Row{
				cr.TestCase.Name,
				cr.TestCase.Category,
				r.colorize(cr.Result),
				status,
				cr.PollAttempts,
				len(cr.Failures),
				cr.Duration.Round(time.Millisecond),
			})
		}
		t.Render()
	}

	r.printf("📊 Results:\n")
	r.printf("   ✅ Passed: %d\n", suiteResult.PassedCases)
	if suiteResult.FailedCases > 0 {
		r.printf("   ❌ Failed: %d\n", suiteResult.FailedCases)
	}
	if suiteResult.ErrorCases > 0 {
		r.printf("   💥 Errors: %d\n", suiteResult.ErrorCases)
	}
	if suiteResult.SkippedCases > 0 {
		r.printf("   ⏭️  Skipped: %d\n", suiteResult.SkippedCases)
	}
	r.printf("   📈 Total: %d\n", suiteResult.TotalCases)

	successRate := 0.0
	if suiteResult.TotalCases > 0 {
		successRate = float64(suiteResult.PassedCases) / float64(suiteResult.TotalCases) * 100
	}
	r.printf("   📏 Success Rate: %.1f%%\n", successRate)

	if suiteResult.Succeeded() {
		r.printf("\n🎉 All tests passed!\n")
	} else {
		r.printf("\n💔 Some tests failed\n")
	}
}

func (r *testReporter) colorize(result TestResult) string {
	switch result {
	case ResultPassed:
		return r.passed(string(result))
	case ResultFailed:
		return r.failed(string(result))
	case ResultError:
		return r.errored(string(result))
	default:
		return r.skipped(string(result))
	}
}

// getResultSymbol returns an appropriate symbol for the test result
func (r *testReporter) getResultSymbol(result TestResult) string {
	switch result {
	case ResultPassed:
		return "✅"
	case ResultFailed:
		return "❌"
	case ResultSkipped:
		return "⏭️"
	case ResultError:
		return "💥"
	default:
		return "❓"
	}
}

func (r *testReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// NewQuietReporter creates a reporter that only outputs failures and the final count
func NewQuietReporter(out io.Writer) TestReporter {
	return &quietReporter{out: out}
}

// quietReporter implements minimal output for CI/CD integration
type quietReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func (r *quietReporter) ReportStart(TestConfiguration) {}

func (r *quietReporter) ReportCaseStart(TestCase) {}

func (r *quietReporter) ReportCaseResult(result TestCaseResult) {
	if !failed(result) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	symbol := "❌"
	detail := fmt.Sprintf("%d assertion failures", len(result.Failures))
	if result.Result == ResultError {
		symbol = "💥"
		detail = result.Error
	}
	fmt.Fprintf(r.out, "%s %s: %s\n", symbol, result.TestCase.Name, detail)
}

func (r *quietReporter) ReportSuiteResult(suiteResult TestSuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Tests: %d passed, %d failed, %d errors, %d skipped (%d total)\n",
		suiteResult.PassedCases, suiteResult.FailedCases, suiteResult.ErrorCases, suiteResult.SkippedCases, suiteResult.TotalCases)
}

func (r *quietReporter) SetParallelMode(bool) {}

// multiReporter fans every call out to several reporters
type multiReporter []TestReporter

// NewMultiReporter combines reporters. Nil entries are ignored.
func NewMultiReporter(reporters ...TestReporter) TestReporter {
	var m multiReporter
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multiReporter) ReportStart(config TestConfiguration) {
	for _, r := range m {
		r.ReportStart(config)
	}
}

func (m multiReporter) ReportCaseStart(tc TestCase) {
	for _, r := range m {
		r.ReportCaseStart(tc)
	}
}

func (m multiReporter) ReportCaseResult(result TestCaseResult) {
	for _, r := range m {
		r.ReportCaseResult(result)
	}
}

func (m multiReporter) ReportSuiteResult(result TestSuiteResult) {
	for _, r := range m {
		r.ReportSuiteResult(result)
	}
}

func (m multiReporter) SetParallelMode(parallel bool) {
	for _, r := range m {
		r.SetParallelMode(parallel)
	}
}
