package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"apicase/internal/testing"
	pkgstrings "apicase/pkg/strings"
)

var checkQuiet bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [name-prefix...]",
	Short: "Check that test case files parse and build",
	Long: `Check parses every test case file and builds its request without sending it.

Dependencies named by DEPENDANT_TEST_CASE rows are not executed; they only have
to exist. Values that come from saved variables resolve to nothing.

Examples:
  apicase check              # Check every test case
  apicase check TC001        # Check test cases by name prefix
  apicase check --quiet      # Only list test cases with problems`,
	RunE:              runCheck,
	ValidArgsFunction: completeTestCaseNames,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Only print test cases with problems")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	framework, err := testing.NewTestFramework(cfg, testing.FrameworkOptions{Output: cmd.OutOrStdout()})
	if err != nil {
		return fmt.Errorf("failed to create test framework: %w", err)
	}

	cases, err := framework.Loader.LoadTestCases()
	if err != nil {
		return err
	}
	cases, err = framework.Loader.FilterTestCases(cases, testing.TestConfiguration{Names: args})
	if err != nil {
		return err
	}

	results := framework.CheckTestCases(cmd.Context(), cases)
	failed := renderCheckResults(cmd, results, checkQuiet)

	if failed > 0 {
		return &testing.SuiteFailedError{Errors: failed, Total: len(results)}
	}
	return nil
}

// renderCheckResults prints a table of results and returns the number of problems.
func renderCheckResults(cmd *cobra.Command, results []testing.CheckResult, quiet bool) int {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("FILE"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("METHOD"),
		text.FgHiCyan.Sprint("ENDPOINT"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("ERROR"),
	})

	failed := 0
	for _, r := range results {
		status := text.FgGreen.Sprint("OK")
		if !r.OK {
			failed++
			status = text.FgRed.Sprint("INVALID")
		} else if quiet {
			continue
		}
		t.AppendRow(table.Row{r.TestCase.File, r.TestCase.Name, r.Method, r.Endpoint, status, pkgstrings.SingleLine(r.Error, pkgstrings.DefaultCellMaxLen)})
	}

	if t.Length() > 0 {
		t.Render()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d test cases valid\n", len(results)-failed, len(results))
	return failed
}
