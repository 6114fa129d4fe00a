// Package gtlog is the process-wide structured logger, mirroring
// pkg/logging/logging.go's slog-backed design but trimmed to the CLI-only
// mode this tool runs in: there is no TUI channel and no controller-runtime
// bridge, since a test harness has no Kubernetes client to wire a logr
// adapter into.
package gtlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level mirrors logging.LogLevel's four severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
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

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the package-level logger, matching logging.InitForCLI's
// signature and call site in the teacher (cmd/root.go's PersistentPreRun).
// output is typically os.Stderr or the file opened for --logfile PATH.
func Init(level Level, output io.Writer) {
	defaultLogger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()}))
}

func logInternal(level Level, subsystem string, err error, messageFmt string, args ...any) {
	if !defaultLogger.Enabled(context.Background(), level.slogLevel()) {
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
	defaultLogger.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug-level message tagged with its subsystem
// (e.g. gtlog.Debug("scheduler", "picked %s", name)).
func Debug(subsystem, messageFmt string, args ...any) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an info-level message.
func Info(subsystem, messageFmt string, args ...any) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning-level message.
func Warn(subsystem, messageFmt string, args ...any) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error-level message with its cause attached.
func Error(subsystem string, err error, messageFmt string, args ...any) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}
