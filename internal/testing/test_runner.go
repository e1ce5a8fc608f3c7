package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"apicase/internal/directive"
	"apicase/internal/dispatch"
	"apicase/internal/execution"
	"apicase/internal/request"
	"apicase/internal/schema"
	"apicase/internal/validate"
	"apicase/internal/value"
	"apicase/pkg/logging"
)

// Engine bundles the pipeline stages a runner drives.
type Engine struct {
	// Fs is used to read directive files. Defaults to the OS filesystem.
	Fs         afero.Fs
	Resolver   *value.Resolver
	Builder    *request.Builder
	Dispatcher *dispatch.Dispatcher
	Validator  *validate.Validator
	Schemas    *schema.Validator
	// DefaultPollTimeout applies when the expected value has no timeout suffix.
	DefaultPollTimeout time.Duration
}

// testRunner implements the TestRunner interface
type testRunner struct {
	engine   Engine
	parser   *directive.Parser
	loader   TestCaseLoader
	reporter TestReporter
	debug    bool
	logger   TestLogger
}

// NewTestRunner creates a runner. The runner resolves DEPENDANT_TEST_CASE rows
// through loader and runs them on the caller's execution context.
func NewTestRunner(engine Engine, loader TestCaseLoader, reporter TestReporter, logger TestLogger) TestRunner {
	if engine.Fs == nil {
		engine.Fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = NewSilentLogger(false, false)
	}
	r := &testRunner{
		engine:   engine,
		loader:   loader,
		reporter: reporter,
		debug:    logger.IsDebugEnabled(),
		logger:   logger,
	}
	r.parser = directive.NewParser(engine.Resolver, r)
	return r
}

// Run executes the cases selected by config, sequentially or on a worker pool.
func (r *testRunner) Run(ctx context.Context, config TestConfiguration, cases []TestCase) (*TestSuiteResult, error) {
	result := &TestSuiteResult{
		StartTime:     time.Now(),
		TotalCases:    len(cases),
		CaseResults:   make([]TestCaseResult, 0, len(cases)),
		Configuration: config,
	}

	r.reporter.ReportStart(config)

	filtered, err := r.loader.FilterTestCases(cases, config)
	if err != nil {
		return nil, err
	}
	result.TotalCases = len(filtered)

	if len(filtered) == 0 {
		result.EndTime = time.Now()
		r.reporter.ReportSuiteResult(*result)
		return result, nil
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	if config.Parallel <= 1 {
		r.reporter.SetParallelMode(false)
		stopped := false
		for _, tc := range filtered {
			var caseResult TestCaseResult
			if stopped || ctx.Err() != nil {
				caseResult = skippedResult(tc, "run stopped before the test case started")
			} else {
				r.reporter.ReportCaseStart(tc)
				caseResult = r.RunCase(ctx, tc)
			}
			result.CaseResults = append(result.CaseResults, caseResult)
			r.updateCounters(result, caseResult)
			r.reporter.ReportCaseResult(caseResult)

			if config.FailFast && failed(caseResult) && !stopped {
				r.logger.Debug("🛑 Fail-fast triggered by test case: %s\n", tc.Name)
				stopped = true
			}
		}
	} else {
		r.reporter.SetParallelMode(true)
		result.CaseResults = r.runCasesParallel(ctx, filtered, config, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	logging.Info("Runner", "Run finished: %d passed, %d failed, %d errored, %d skipped in %s",
		result.PassedCases, result.FailedCases, result.ErrorCases, result.SkippedCases, result.Duration.Round(time.Millisecond))

	r.reporter.ReportSuiteResult(*result)
	return result, nil
}

// runCasesParallel runs cases on config.Parallel workers. Results keep the
// input order; fail-fast stops workers from starting new cases.
func (r *testRunner) runCasesParallel(ctx context.Context, cases []TestCase, config TestConfiguration, suiteResult *TestSuiteResult) []TestCaseResult {
	type job struct {
		index int
		tc    TestCase
	}
	type done struct {
		index  int
		result TestCaseResult
	}

	jobs := make(chan job, len(cases))
	results := make(chan done, len(cases))
	for i, tc := range cases {
		jobs <- job{index: i, tc: tc}
	}
	close(jobs)

	var stop atomic.Bool
	var wg sync.WaitGroup
	numWorkers := config.Parallel
	if numWorkers > len(cases) {
		numWorkers = len(cases)
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				if stop.Load() || ctx.Err() != nil {
					results <- done{index: j.index, result: skippedResult(j.tc, "run stopped before the test case started")}
					continue
				}
				if r.debug {
					r.logger.Debug("🔄 Worker %d executing test case: %s\n", workerID, j.tc.Name)
				}
				r.reporter.ReportCaseStart(j.tc)
				results <- done{index: j.index, result: r.RunCase(ctx, j.tc)}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]TestCaseResult, len(cases))
	for d := range results {
		ordered[d.index] = d.result
		r.updateCounters(suiteResult, d.result)
		r.reporter.ReportCaseResult(d.result)

		if config.FailFast && failed(d.result) && !stop.Load() {
			r.logger.Debug("🛑 Fail-fast triggered by test case: %s\n", d.result.TestCase.Name)
			stop.Store(true)
		}
	}
	return ordered
}

// RunCase runs one test case on a fresh execution context with validation
// enabled. The context is cleared before RunCase returns.
func (r *testRunner) RunCase(ctx context.Context, tc TestCase) TestCaseResult {
	result := TestCaseResult{
		TestCase:  tc,
		StartTime: time.Now(),
	}

	ec := execution.New(tc.Name)
	defer ec.Clear()
	result.ExecutionID = ec.ID

	logging.Debug("Runner", "Running test case %s (%s) with execution %s", tc.Name, tc.File, ec.ID)

	err := r.execute(withChain(ctx, tc), tc, ec, true, &result)

	result.Failures = ec.Failures()
	result.Notes = ec.Notes()
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	switch {
	case err != nil:
		result.Result = ResultError
		result.Error = err.Error()
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			result.Step = stepErr.Step
		}
		logging.Error("Runner", err, "Test case %s aborted", tc.Name)
	case len(result.Failures) > 0:
		result.Result = ResultFailed
	default:
		result.Result = ResultPassed
	}
	return result
}

// RunDependency runs the test case named by prefix on ec with validation
// disabled. It is called by the parser for DEPENDANT_TEST_CASE rows.
func (r *testRunner) RunDependency(ctx context.Context, name string, ec *execution.Context) error {
	tc, err := r.loader.Find(name)
	if err != nil {
		return err
	}

	chain := chainFrom(ctx)
	for _, prev := range chain {
		if prev.File == tc.File {
			names := make([]string, 0, len(chain)+1)
			for _, c := range chain {
				names = append(names, c.Name)
			}
			return &DependencyCycleError{Chain: append(names, tc.Name)}
		}
	}

	if r.debug {
		r.logger.Debug("   🔗 Running dependency %s for %s\n", tc.Name, ec.Name)
	}
	return r.execute(withChain(ctx, tc), tc, ec, false, nil)
}

// execute runs the pipeline for tc on ec. trace, when not nil, receives the
// request summary of the case.
func (r *testRunner) execute(ctx context.Context, tc TestCase, ec *execution.Context, validation bool, trace *TestCaseResult) error {
	rows, err := directive.LoadRows(r.engine.Fs, tc.File)
	if err != nil {
		return &StepError{TestCase: tc.Name, Step: StepLoad, Err: err}
	}

	spec, err := r.parser.Parse(ctx, ec, rows)
	if err != nil {
		return &StepError{TestCase: tc.Name, Step: parseStep(err), Err: err}
	}
	if trace != nil {
		trace.Dependencies = spec.Dependencies
		trace.Method = spec.Method
		trace.Endpoint = spec.Endpoint
	}

	params, err := r.engine.Builder.Build(ctx, ec, spec)
	if err != nil {
		return &StepError{TestCase: tc.Name, Step: buildStep(err), Err: err}
	}

	var first any
	if len(spec.ExpectedValues) > 0 {
		first = spec.ExpectedValues[0]
	}
	cond := dispatch.ParseCondition(first, r.engine.DefaultPollTimeout)
	if cond.Active() {
		spec.ExpectedValues[0] = cond.Token
	}

	resp, outcome, err := r.engine.Dispatcher.Poll(ctx, params, cond)
	if trace != nil {
		trace.PollAttempts = outcome.Attempts
		trace.ConditionMet = outcome.ConditionMet
		trace.TimedOut = outcome.TimedOut
	}
	if err != nil {
		return &StepError{TestCase: tc.Name, Step: StepDispatch, Err: err}
	}
	ec.SetLastResponse(resp)
	if trace != nil {
		trace.StatusCode = resp.StatusCode
	}

	if validation {
		r.engine.Validator.ValidateStatus(ec, spec.ResponseCode)
		if err := r.engine.Validator.Validate(ctx, ec, spec.JSONPaths, spec.ExpectedValues); err != nil {
			return &StepError{TestCase: tc.Name, Step: validateStep(err), Err: err}
		}
		if r.engine.Schemas != nil {
			res := r.engine.Schemas.Validate(ec, spec.Schema)
			if trace != nil {
				trace.Schema = &res
			}
		}
	}

	if err := r.engine.Validator.SaveResponseObjects(ec, spec.StoreKeys, spec.JSONPaths); err != nil {
		return &StepError{TestCase: tc.Name, Step: StepStoreValue, Err: err}
	}
	return nil
}

func (r *testRunner) updateCounters(suiteResult *TestSuiteResult, caseResult TestCaseResult) {
	switch caseResult.Result {
	case ResultPassed:
		suiteResult.PassedCases++
	case ResultFailed:
		suiteResult.FailedCases++
	case ResultError:
		suiteResult.ErrorCases++
	case ResultSkipped:
		suiteResult.SkippedCases++
	}
}

func parseStep(err error) string {
	var depErr *directive.DependencyError
	if errors.As(err, &depErr) {
		return StepDependency
	}
	var resErr *value.ValueResolutionError
	if errors.As(err, &resErr) {
		return resErr.Step
	}
	var arityErr *directive.DirectiveParseError
	if errors.As(err, &arityErr) {
		return string(arityErr.Keyword)
	}
	return StepParse
}

func buildStep(err error) string {
	var mergeErr *request.MergeError
	if errors.As(err, &mergeErr) {
		return mergeErr.Step
	}
	var resErr *value.ValueResolutionError
	if errors.As(err, &resErr) {
		return resErr.Step
	}
	var methodErr *request.UnsupportedMethodError
	if errors.As(err, &methodErr) {
		return string(directive.Method)
	}
	var notFound *request.TemplateFileNotFoundError
	var parseErr *request.TemplateParseError
	if errors.As(err, &notFound) || errors.As(err, &parseErr) {
		return string(directive.BodyKey)
	}
	return StepBuild
}

func validateStep(err error) string {
	var resErr *value.ValueResolutionError
	if errors.As(err, &resErr) {
		return resErr.Step
	}
	return StepValidate
}

func failed(result TestCaseResult) bool {
	return result.Result == ResultFailed || result.Result == ResultError
}

func skippedResult(tc TestCase, reason string) TestCaseResult {
	now := time.Now()
	return TestCaseResult{
		TestCase:  tc,
		Result:    ResultSkipped,
		StartTime: now,
		EndTime:   now,
		Notes:     []string{reason},
	}
}

type chainKey struct{}

// withChain records tc as the innermost running case of ctx.
func withChain(ctx context.Context, tc TestCase) context.Context {
	prev := chainFrom(ctx)
	chain := make([]TestCase, len(prev), len(prev)+1)
	copy(chain, prev)
	return context.WithValue(ctx, chainKey{}, append(chain, tc))
}

func chainFrom(ctx context.Context) []TestCase {
	chain, _ := ctx.Value(chainKey{}).([]TestCase)
	return chain
}

// String renders the case for log lines.
func (tc TestCase) String() string {
	if tc.Category == "" {
		return tc.Name
	}
	return fmt.Sprintf("%s/%s", tc.Category, tc.Name)
}
