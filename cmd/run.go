package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"apicase/internal/config"
	"apicase/internal/testing"
	"apicase/pkg/logging"
)

var (
	runParallel      int
	runTimeout       time.Duration
	runFailFast      bool
	runVerbose       bool
	runDebug         bool
	runQuiet         bool
	runPatterns      []string
	runSkipPatterns  []string
	runReportJSON    string
	runReportXLSX    string
	runWatch         bool
	runMetricsListen string
	runNoSpinner     bool
)

// completeTestCaseNames provides shell completion with the discovered test case names
func completeTestCaseNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return testing.LoadTestCasesForCompletion(cfg.TestDataDir), cobra.ShellCompDirectiveNoFileComp
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [name-prefix...]",
	Short: "Run API test cases",
	Long: `Run discovers every .csv and .xlsx test case under the test data directory
and runs those selected by the name prefixes and filters.

A test case is named after its file name up to the first underscore, so
test_data/users/TC001_create_user.csv is TC001 in category Users.

Example usage:
  apicase run                          # Run all test cases
  apicase run TC001 TC002              # Run test cases by name prefix
  apicase run --run '^TC0' --skip 'TC03'
  apicase run --parallel=8 --fail-fast
  apicase run --verbose --debug        # Detailed output and request tracing
  apicase run --report-json=report.json --report-xlsx=report.xlsx
  apicase run --watch                  # Re-run when test data changes
  apicase run --metrics-listen=:9102   # Expose Prometheus metrics while running

The command exits with code 2 when a test case fails or errors.`,
	RunE:              runRun,
	ValidArgsFunction: completeTestCaseNames,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Test execution configuration
	runCmd.Flags().IntVar(&runParallel, "parallel", config.DefaultParallel, "Number of parallel test workers")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", config.DefaultTimeout, "Overall test execution timeout")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop scheduling test cases after the first failure")

	// Output and debugging
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Enable verbose test output")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging and request tracing")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Only print failures and the final count")
	runCmd.Flags().BoolVar(&runNoSpinner, "no-spinner", false, "Disable the progress spinner")

	// Test selection and filtering
	runCmd.Flags().StringArrayVar(&runPatterns, "run", nil, "Only run test cases whose name matches this regular expression (repeatable)")
	runCmd.Flags().StringArrayVar(&runSkipPatterns, "skip", nil, "Skip test cases whose name matches this regular expression (repeatable)")

	// Reporting
	runCmd.Flags().StringVar(&runReportJSON, "report-json", "", "Write the suite result as JSON to this path")
	runCmd.Flags().StringVar(&runReportXLSX, "report-xlsx", "", "Write the suite result as an xlsx workbook to this path")
	runCmd.Flags().StringVar(&runMetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address while running")

	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Re-run the selected test cases whenever test data changes")

	_ = runCmd.RegisterFlagCompletionFunc("run", completeTestCaseNames)
	_ = runCmd.RegisterFlagCompletionFunc("skip", completeTestCaseNames)

	runCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
}

// applyRunFlags overrides configuration values with flags set on the command line
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.Parallel = runParallel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = runTimeout
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = runFailFast
	}
	if flags.Changed("report-json") {
		cfg.Reports.JSON = runReportJSON
	}
	if flags.Changed("report-xlsx") {
		cfg.Reports.Workbook = runReportXLSX
	}
	if flags.Changed("metrics-listen") {
		cfg.Metrics.Listen = runMetricsListen
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt signal, stopping tests gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	useSpinner := !runVerbose && !runDebug && !runQuiet && !runNoSpinner
	opts := testing.FrameworkOptions{
		Verbose:    runVerbose,
		Debug:      runDebug,
		Quiet:      runQuiet,
		Output:     cmd.OutOrStdout(),
		LineOutput: useSpinner,
	}

	var progress *spinnerReporter
	if useSpinner {
		progress = newSpinnerReporter(cmd.ErrOrStderr())
		opts.Output = progress.Writer(cmd.OutOrStdout())
		opts.Reporters = []testing.TestReporter{progress}
	}

	framework, err := testing.NewTestFramework(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to create test framework: %w", err)
	}

	if cfg.Metrics.Listen != "" {
		stop := serveMetrics(framework, cfg.Metrics.Listen)
		defer stop()
	}

	testConfig := testing.TestConfigurationFromConfig(cfg)
	testConfig.Verbose = runVerbose
	testConfig.Debug = runDebug
	testConfig.Names = args
	testConfig.Run = runPatterns
	testConfig.Skip = runSkipPatterns

	if err := testing.ValidateConfiguration(testConfig); err != nil {
		return err
	}

	runOnce := func() error {
		result, err := framework.RunSuite(ctx, testConfig)
		if err != nil {
			return fmt.Errorf("test execution failed: %w", err)
		}
		if result.TotalCases == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "⚠️  No test cases found in %s\n", cfg.TestDataDir)
		}
		if !result.Succeeded() {
			return &testing.SuiteFailedError{Failed: result.FailedCases, Errors: result.ErrorCases, Total: result.TotalCases}
		}
		return nil
	}

	if !runWatch {
		return runOnce()
	}

	if err := runOnce(); err != nil && !isSuiteFailure(err) {
		return err
	}

	dirs := []string{cfg.TestDataDir, cfg.TemplateDir, cfg.SchemaDir, cfg.DynamicStringsDir}
	fmt.Fprintf(cmd.OutOrStdout(), "\n👀 Watching %s for changes (Ctrl+C to stop)\n", cfg.TestDataDir)
	return testing.Watch(ctx, dirs, testing.DefaultDebounce, func() {
		framework.Invalidate()
		fmt.Fprintf(cmd.OutOrStdout(), "\n🔁 Change detected, re-running test cases\n")
		if err := runOnce(); err != nil && !isSuiteFailure(err) {
			logging.Error("Runner", err, "Test run failed")
		}
	})
}

func isSuiteFailure(err error) bool {
	var suiteFailed *testing.SuiteFailedError
	return errors.As(err, &suiteFailed)
}

// serveMetrics exposes the dispatcher metrics until the returned func is called
func serveMetrics(framework *testing.TestFramework, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(framework.Metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("Dispatcher", "Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Dispatcher", err, "Metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// newProgressSpinner creates the spinner used while test cases run
func newProgressSpinner() *spinner.Spinner {
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond)
}
