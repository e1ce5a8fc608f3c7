// Package agent exposes the apicase engine to MCP (Model Context Protocol)
// clients over stdio.
//
// The server is started by `apicase serve` and registers these tools:
//
//	list_test_cases   filter?                 -> [{name, file, category}]
//	run_test_case     name, verbose?          -> TestCaseResult
//	run_test_suite    run?, skip?, parallel?  -> TestSuiteResult
//	get_results                               -> last TestSuiteResult
//
// All results are returned as indented JSON text content. Tool failures are
// reported with mcp.NewToolResultError so that the protocol stream stays
// healthy; only transport problems surface as Go errors.
//
// The framework runs in testing.ExecutionModeMCPServer, so nothing is written
// to stdout besides protocol messages. Runs are serialised because the
// structured reporter keeps a single current suite.
package agent
