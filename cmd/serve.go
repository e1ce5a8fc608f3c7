package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"apicase/internal/agent"
	"apicase/internal/testing"
)

// serveDebug enables debug notes in results returned to MCP clients.
var serveDebug bool

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve test cases to MCP clients over stdio",
	Long: `Serve starts an MCP (Model Context Protocol) server on stdio that lets AI
assistants list and run the test cases found in the test data directory.

Tools:
  list_test_cases   List test cases, optionally filtered by a name pattern
  run_test_case     Run one test case and return its result
  run_test_suite    Run the selected test cases and return the suite result
  get_results       Return the result of the last suite run

Configure it in your assistant's MCP settings with the command
"apicase serve" and the working directory of your test data.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	server, err := agent.NewServer(cfg, testing.FrameworkOptions{Verbose: true, Debug: serveDebug}, GetVersion())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug output in test results")
}
