package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mark3labs/mcp-go/mcp"

	"apicase/internal/testing"
	"apicase/pkg/logging"
)

// handleListTestCases handles the list_test_cases MCP tool
func (s *Server) handleListTestCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var filter *regexp.Regexp
	if pattern, ok := args["filter"].(string); ok && pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid filter pattern '%s': %v", pattern, err)), nil
		}
		filter = re
	}

	cases, err := s.framework.Loader.LoadTestCases()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load test cases: %v", err)), nil
	}

	listed := make([]testing.TestCase, 0, len(cases))
	for _, tc := range cases {
		if filter == nil || filter.MatchString(tc.Name) {
			listed = append(listed, tc)
		}
	}

	return jsonResult(listed)
}

// handleRunTestCase handles the run_test_case MCP tool
func (s *Server) handleRunTestCase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	verbose, _ := args["verbose"].(bool)

	tc, err := s.framework.Loader.Find(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find test case: %v", err)), nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logging.Info("MCPServer", "Running test case %s", tc.Name)
	result := s.framework.Runner.RunCase(runCtx, tc)
	if !verbose {
		result.Notes = nil
	}

	return jsonResult(result)
}

// handleRunTestSuite handles the run_test_suite MCP tool
func (s *Server) handleRunTestSuite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	config := testing.TestConfigurationFromConfig(s.cfg)
	config.Verbose = true

	if run, ok := args["run"].(string); ok && run != "" {
		config.Run = []string{run}
	}
	if skip, ok := args["skip"].(string); ok && skip != "" {
		config.Skip = []string{skip}
	}
	if parallel, ok := args["parallel"].(float64); ok {
		if parallel < 1 || parallel > MaxParallel {
			return mcp.NewToolResultError(fmt.Sprintf("parallel workers must be between 1 and %d", MaxParallel)), nil
		}
		config.Parallel = int(parallel)
	}

	if err := testing.ValidateConfiguration(config); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid configuration: %v", err)), nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	logging.Info("MCPServer", "Running test suite with %d workers", config.Parallel)
	result, err := s.framework.RunSuite(ctx, config)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Test execution failed: %v", err)), nil
	}
	s.lastResult = result

	return jsonResult(result)
}

// handleGetResults handles the get_results MCP tool
func (s *Server) handleGetResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.lastResult == nil {
		return mcp.NewToolResultText("No test results available. Run run_test_suite first."), nil
	}

	if structured, ok := s.framework.Reporter.(testing.StructuredReporter); ok {
		jsonData, err := structured.GetResultsAsJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get structured results: %v", err)), nil
		}
		return mcp.NewToolResultText(jsonData), nil
	}

	return jsonResult(s.lastResult)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
