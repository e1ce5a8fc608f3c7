package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/briandowns/spinner"

	"apicase/internal/testing"
)

// spinnerReporter shows a progress spinner while test cases run. It must be
// notified before the console reporter so the spinner stops before the
// summary is printed.
type spinnerReporter struct {
	s *spinner.Spinner

	mu      sync.Mutex
	done    int
	current string
}

func newSpinnerReporter(out io.Writer) *spinnerReporter {
	s := newProgressSpinner()
	s.Writer = out
	return &spinnerReporter{s: s}
}

// Writer wraps out so that each write clears the spinner line first.
func (r *spinnerReporter) Writer(out io.Writer) io.Writer {
	return &spinnerWriter{s: r.s, out: out}
}

func (r *spinnerReporter) ReportStart(testing.TestConfiguration) {
	r.mu.Lock()
	r.done = 0
	r.current = ""
	r.mu.Unlock()

	r.setSuffix(" Running test cases...")
	r.s.Start()
}

func (r *spinnerReporter) ReportCaseStart(tc testing.TestCase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = tc.Name
	r.setSuffix(fmt.Sprintf(" Running %s (%d done)", r.current, r.done))
}

func (r *spinnerReporter) ReportCaseResult(testing.TestCaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if r.current == "" {
		r.setSuffix(fmt.Sprintf(" Running test cases (%d done)", r.done))
	}
}

func (r *spinnerReporter) ReportSuiteResult(testing.TestSuiteResult) {
	r.s.Stop()
}

func (r *spinnerReporter) SetParallelMode(bool) {}

func (r *spinnerReporter) setSuffix(suffix string) {
	r.s.Lock()
	r.s.Suffix = suffix
	r.s.Unlock()
}

// spinnerWriter erases the spinner frame before passing writes through
type spinnerWriter struct {
	s   *spinner.Spinner
	out io.Writer
}

func (w *spinnerWriter) Write(p []byte) (int, error) {
	active := w.s.Active()
	w.s.Lock()
	defer w.s.Unlock()
	if active {
		fmt.Fprint(w.s.Writer, "\r\033[K")
	}
	return w.out.Write(p)
}
