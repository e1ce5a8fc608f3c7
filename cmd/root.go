package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"apicase/internal/config"
	"apicase/internal/testing"
	"apicase/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeTestsFailed indicates at least one test case failed or errored.
	ExitCodeTestsFailed = 2
	// ExitCodeInvalidConfig indicates the configuration file did not validate.
	ExitCodeInvalidConfig = 3
)

var (
	configPath string
	logLevel   string
	logFormat  string
	envFiles   []string
)

// rootCmd represents the base command for the apicase application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "apicase",
	Short: "Run data-driven API test cases",
	Long: `apicase runs API test cases described as directive files (.csv or .xlsx).

Each test case names an endpoint, a method, parameters, headers and a body,
then lists JSON paths with the values the response must carry. Values can be
literals, variables saved by earlier cases, or calls into extension modules.
Requests can be retried until the response contains an expected value.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apicase version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var suiteFailed *testing.SuiteFailedError
	if errors.As(err, &suiteFailed) {
		return ExitCodeTestsFailed
	}

	var invalid *config.ValidationError
	if errors.As(err, &invalid) {
		return ExitCodeInvalidConfig
	}

	return ExitCodeError
}

// initRuntime sets up logging and loads .env files before any command runs.
func initRuntime(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	logging.InitForCLIWithFormat(level, format, os.Stderr)

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return fmt.Errorf("failed to load env files: %w", err)
		}
		return nil
	}
	// An optional .env in the working directory
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("ConfigLoader", "Failed to load .env: %v", err)
	}
	return nil
}

// loadConfig reads and validates the configuration selected by --config.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment variables from these files (default: .env if present)")
}
