package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"apicase/internal/config"
	"apicase/internal/testing"
	"apicase/pkg/logging"
)

// MaxParallel caps the parallel argument of run_test_suite
const MaxParallel = 32

// Server wraps the test framework and exposes it via MCP
type Server struct {
	mcpServer *server.MCPServer
	framework *testing.TestFramework
	cfg       config.Config

	// runMu serialises runs sharing the structured reporter
	runMu      sync.Mutex
	lastResult *testing.TestSuiteResult
}

// NewServer creates an MCP server backed by a framework built from cfg
func NewServer(cfg config.Config, opts testing.FrameworkOptions, version string) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"apicase",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	framework, err := testing.NewTestFrameworkForMode(testing.ExecutionModeMCPServer, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create test framework: %w", err)
	}

	s := &Server{
		mcpServer: mcpServer,
		framework: framework,
		cfg:       cfg,
	}
	s.registerTools()

	return s, nil
}

// Start serves MCP over stdio until the input stream closes
func (s *Server) Start(ctx context.Context) error {
	logging.Info("MCPServer", "Serving test cases from %s over stdio", s.cfg.TestDataDir)
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_test_cases",
		mcp.WithDescription("List the test cases found in the test data directory"),
		mcp.WithString("filter",
			mcp.Description("Regular expression matched against test case names"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleListTestCases)

	runCaseTool := mcp.NewTool("run_test_case",
		mcp.WithDescription("Run a single test case, including its dependencies"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Test case name or unique name prefix, e.g. TC001"),
		),
		mcp.WithBoolean("verbose",
			mcp.Description("Include execution notes in the result"),
		),
	)
	s.mcpServer.AddTool(runCaseTool, s.handleRunTestCase)

	runSuiteTool := mcp.NewTool("run_test_suite",
		mcp.WithDescription("Run every test case selected by the run and skip filters"),
		mcp.WithString("run",
			mcp.Description("Only run test cases whose name matches this regular expression"),
		),
		mcp.WithString("skip",
			mcp.Description("Skip test cases whose name matches this regular expression"),
		),
		mcp.WithNumber("parallel",
			mcp.Description("Number of parallel workers"),
		),
	)
	s.mcpServer.AddTool(runSuiteTool, s.handleRunTestSuite)

	resultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results from the last test suite run"),
	)
	s.mcpServer.AddTool(resultsTool, s.handleGetResults)
}
