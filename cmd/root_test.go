package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"apicase/internal/config"
	apitesting "apicase/internal/testing"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("Expected GetVersion to return %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "apicase" {
		t.Errorf("Expected Use to be 'apicase', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	for _, name := range []string{"config", "log-level", "log-format", "env-file"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag --%s", name)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "apicase version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	expected := "apicase version 1.0.0\n"
	if buf.String() != expected {
		t.Errorf("Expected version output %q, got %q", expected, buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	commands := rootCmd.Commands()

	expectedCommands := []string{"version", "run", "check", "serve"}
	foundCommands := make(map[string]bool)
	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	invalid := &config.ValidationError{}
	invalid.Add("parallel", "must be at least 1, got %d", 0)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "general error", err: errors.New("boom"), want: ExitCodeError},
		{name: "suite failed", err: &apitesting.SuiteFailedError{Failed: 1, Total: 2}, want: ExitCodeTestsFailed},
		{name: "wrapped suite failed", err: fmt.Errorf("run: %w", &apitesting.SuiteFailedError{Errors: 1}), want: ExitCodeTestsFailed},
		{name: "invalid config", err: invalid, want: ExitCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestRootCommandHelp(t *testing.T) {
	var buf bytes.Buffer
	testRootCmd := &cobra.Command{
		Use:          rootCmd.Use,
		Short:        rootCmd.Short,
		Long:         rootCmd.Long,
		SilenceUsage: true,
	}

	testRootCmd.SetOut(&buf)
	testRootCmd.SetArgs([]string{"--help"})
	if err := testRootCmd.Execute(); err != nil {
		t.Fatalf("Error executing help command: %v", err)
	}

	if !strings.Contains(buf.String(), "directive files") {
		t.Errorf("Help output should contain the long description. Got: %q", buf.String())
	}
}
