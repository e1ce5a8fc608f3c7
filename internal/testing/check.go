package testing

import (
	"context"

	"apicase/internal/directive"
	"apicase/internal/execution"
)

// CheckResult is the outcome of parsing one test case without dispatching it.
type CheckResult struct {
	TestCase TestCase `json:"test_case"`
	Method   string   `json:"method,omitempty"`
	Endpoint string   `json:"endpoint,omitempty"`
	OK       bool     `json:"ok"`
	Step     string   `json:"step,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// existenceChecker satisfies directive.DependencyRunner by only locating the
// dependency.
type existenceChecker struct {
	loader TestCaseLoader
}

func (c existenceChecker) RunDependency(_ context.Context, name string, _ *execution.Context) error {
	_, err := c.loader.Find(name)
	return err
}

// CheckTestCases parses and builds every case. Dependencies are located but
// not run, and no request is sent.
func (tf *TestFramework) CheckTestCases(ctx context.Context, cases []TestCase) []CheckResult {
	parser := directive.NewParser(tf.Engine.Resolver, existenceChecker{loader: tf.Loader})

	results := make([]CheckResult, 0, len(cases))
	for _, tc := range cases {
		results = append(results, tf.checkCase(ctx, parser, tc))
	}
	return results
}

func (tf *TestFramework) checkCase(ctx context.Context, parser *directive.Parser, tc TestCase) CheckResult {
	result := CheckResult{TestCase: tc}
	fail := func(step string, err error) CheckResult {
		result.Step = step
		result.Error = err.Error()
		return result
	}

	ec := execution.New(tc.Name)
	defer ec.Clear()

	rows, err := directive.LoadRows(tf.Engine.Fs, tc.File)
	if err != nil {
		return fail(StepLoad, err)
	}
	spec, err := parser.Parse(ctx, ec, rows)
	if err != nil {
		return fail(parseStep(err), err)
	}
	result.Method = spec.Method
	result.Endpoint = spec.Endpoint

	if _, err := tf.Engine.Builder.Build(ctx, ec, spec); err != nil {
		return fail(buildStep(err), err)
	}
	result.OK = true
	return result
}
