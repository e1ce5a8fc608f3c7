package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the slog handler used for CLI output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" into a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", name)
	}
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// InitForCLI initializes text logging at the given level.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	InitForCLIWithFormat(filterLevel, FormatText, output)
}

// InitForCLIWithFormat initializes logging with an explicit output format.
// This should be called once at application startup.
func InitForCLIWithFormat(filterLevel LogLevel, format Format, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()
	slog.SetDefault(defaultLogger)
}

// Enabled reports whether records at level would be written.
func Enabled(level LogLevel) bool {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	return logger != nil && logger.Enabled(context.Background(), level.SlogLevel())
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	if logger == nil {
		// Warnings and errors are never lost before initialization.
		if level >= LevelWarn {
			fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", time.Now().Format(time.RFC3339), level, subsystem, fmt.Sprintf(messageFmt, args...))
		}
		return
	}
	if !logger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}
