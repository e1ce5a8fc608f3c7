package testing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicase/internal/execution"
)

func TestTestReporter_Output(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewTestReporterWithWriter(out, false, false)

	r.SetParallelMode(false)
	r.ReportStart(TestConfiguration{Parallel: 1})
	r.ReportCaseStart(TestCase{Name: "TC001"})
	r.ReportCaseResult(TestCaseResult{
		TestCase: TestCase{Name: "TC001"},
		Result:   ResultFailed,
		Failures: []execution.AssertionFailure{{Check: "status", Expected: "ok", Actual: "ko", Message: "value mismatch"}},
	})
	r.ReportSuiteResult(TestSuiteResult{
		TotalCases:  1,
		FailedCases: 1,
		CaseResults: []TestCaseResult{{TestCase: TestCase{Name: "TC001"}, Result: ResultFailed}},
	})

	text := out.String()
	assert.Contains(t, text, "🧪 Starting apicase test run")
	assert.Contains(t, text, "🎯 TC001... ❌")
	assert.Contains(t, text, `status: value mismatch (expected "ok", actual "ko")`)
	assert.Contains(t, text, "❌ Failed: 1")
	assert.Contains(t, text, "💔 Some tests failed")
}

func TestQuietReporter_OnlyFailures(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewQuietReporter(out)

	r.ReportCaseResult(TestCaseResult{TestCase: TestCase{Name: "TC001"}, Result: ResultPassed})
	r.ReportCaseResult(TestCaseResult{TestCase: TestCase{Name: "TC002"}, Result: ResultError, Error: "boom"})
	r.ReportSuiteResult(TestSuiteResult{TotalCases: 2, PassedCases: 1, ErrorCases: 1})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "💥 TC002: boom", lines[0])
	assert.Equal(t, "Tests: 1 passed, 0 failed, 1 errors, 0 skipped (2 total)", lines[1])
}

func TestNewFileReporter_NilWithoutPaths(t *testing.T) {
	assert.Nil(t, NewFileReporter(afero.NewMemMapFs(), "", ""))
}

func TestLineReporter_PrintsCompleteLines(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewLineReporter(out, false)

	r.ReportCaseStart(TestCase{Name: "TC001"})
	assert.Empty(t, out.String())

	r.ReportCaseResult(TestCaseResult{TestCase: TestCase{Name: "TC001"}, Result: ResultPassed})
	assert.True(t, strings.HasPrefix(out.String(), "🎯 TC001... ✅ ("))
	assert.True(t, strings.HasSuffix(out.String(), ")\n"))
}
