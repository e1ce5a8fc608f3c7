package testing

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// stdoutLogger implements TestLogger for CLI mode
type stdoutLogger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	debug   bool
}

// NewStdoutLogger creates a logger that writes to stdout and stderr
func NewStdoutLogger(verbose, debug bool) TestLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, debug)
}

// NewWriterLogger creates a logger writing info and debug lines to out and
// errors to errOut. Writes are serialised so parallel workers do not interleave.
func NewWriterLogger(out, errOut io.Writer, verbose, debug bool) TestLogger {
	return &stdoutLogger{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		debug:   debug,
	}
}

func (l *stdoutLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		l.write(l.out, format, args...)
	}
}

func (l *stdoutLogger) Info(format string, args ...interface{}) {
	if l.verbose || l.debug {
		l.write(l.out, format, args...)
	}
}

func (l *stdoutLogger) Error(format string, args ...interface{}) {
	l.write(l.errOut, format, args...)
}

func (l *stdoutLogger) write(w io.Writer, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

func (l *stdoutLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *stdoutLogger) IsVerboseEnabled() bool {
	return l.verbose
}

// silentLogger implements TestLogger for MCP server mode, suppressing all output
type silentLogger struct {
	verbose bool
	debug   bool
}

// NewSilentLogger creates a logger that suppresses all output. Anything
// written to stdout would corrupt the stdio transport.
func NewSilentLogger(verbose, debug bool) TestLogger {
	return &silentLogger{
		verbose: verbose,
		debug:   debug,
	}
}

func (l *silentLogger) Debug(string, ...interface{}) {}

func (l *silentLogger) Info(string, ...interface{}) {}

func (l *silentLogger) Error(string, ...interface{}) {}

func (l *silentLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *silentLogger) IsVerboseEnabled() bool {
	return l.verbose
}
