package testing

import (
	"fmt"
	"strings"
)

// Pipeline steps named by StepError.
const (
	StepLoad       = "LOAD"
	StepParse      = "PARSE"
	StepBuild      = "BUILD"
	StepDispatch   = "DISPATCH"
	StepValidate   = "RESPONSE:JSON_PATH"
	StepStoreValue = "RESPONSE:STORE_VALUE"
	StepDependency = "DEPENDANT_TEST_CASE"
)

// StepError aborts a test case. Step names the directive or pipeline stage
// that failed.
type StepError struct {
	TestCase string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("test case %s failed at %s: %v", e.TestCase, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// DependencyCycleError is returned when a test case depends on itself,
// directly or through other cases.
type DependencyCycleError struct {
	Chain []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Chain, " -> ")
}

// SuiteFailedError is returned by callers that treat failed or errored cases
// as a command failure.
type SuiteFailedError struct {
	Failed int
	Errors int
	Total  int
}

func (e *SuiteFailedError) Error() string {
	return fmt.Sprintf("%d of %d test cases failed, %d errored", e.Failed, e.Total, e.Errors)
}
