// Package testing runs directive-driven API test cases.
//
// A test case is one .csv or .xlsx file under the test data directory. Its name
// is the file name up to the first underscore and its category is the
// capitalised name of the parent directory:
//
//	test_data/users/TC001_create_user.csv   ->  TC001 (Users)
//
// # Architecture Overview
//
//	                ┌─────────────────┐
//	                │  apicase run    │ (CLI Command)
//	                │  (cmd/run.go)   │
//	                └────────┬────────┘
//	                         │
//	                ┌────────▼────────┐
//	                │   TestRunner    │ (worker pool)
//	                └────────┬────────┘
//	                         │
//	    ┌──────────┬─────────┼──────────┬───────────┐
//	    │          │         │          │           │
//	 directive  request   dispatch   validate    schema
//	 (parse)    (build)   (poll)     (assert)    (shape)
//
// Each case runs on its own execution.Context, created by RunCase and cleared
// when the case ends. Pipeline stages run in order on one worker:
//
//  1. load rows and parse directives, running DEPENDANT_TEST_CASE rows inline
//  2. build the request parameters
//  3. send the request, polling while the first expected value carries a
//     condition
//  4. check the response code, JSON paths and schema
//  5. store response values for later cases
//
// Dependent cases share the caller's context and skip step 4.
//
// Parse, build and dispatch errors abort the case with a StepError and the
// result is ERROR. Assertion failures are collected and the result is FAILED.
//
// # Execution Modes
//
// ExecutionModeCLI reports to the console and, when configured, to JSON and
// xlsx report files. ExecutionModeMCPServer captures results with a structured
// reporter and never writes to stdout.
package testing
