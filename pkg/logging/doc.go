// Package logging provides the subsystem-tagged structured logger used across apicase.
//
// It is a thin layer over log/slog. Every record carries a "subsystem" attribute so
// that output from the dispatcher, validators and the runner can be told apart when
// several test cases execute in parallel.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Runner", "starting %d test cases", n)
//	logging.Error("Dispatcher", err, "request to %s failed", endpoint)
//
// Output format is either text (the default) or JSON, selected with
// InitForCLIWithFormat.
package logging
