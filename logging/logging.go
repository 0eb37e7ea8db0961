package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	debugLogger *slog.Logger
	logFile     *os.File
	mu          sync.Mutex
	isSetup     bool
)

// Options controls how the debug log is written
type Options struct {
	Path   string
	Level  string
	Format string
	RunID  string
}

// SetupLogger initializes the debug logger with the specified log file
func SetupLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	// Check if logger is already set up
	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(logFile, handlerOpts)
	case "", "text":
		handler = slog.NewTextHandler(logFile, handlerOpts)
	default:
		logFile.Close()
		logFile = nil
		return fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	debugLogger = slog.New(handler)
	if opts.RunID != "" {
		debugLogger = debugLogger.With("run", opts.RunID)
	}

	debugLogger.Info("texturefinder debug log started", "at", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		debugLogger.Info("texturefinder debug log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
		debugLogger = nil
		isSetup = false
	}
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return debugLogger
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Info(fmt.Sprintf(format, args...))
	}
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debug(fmt.Sprintf(format, args...))
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Error(fmt.Sprintf(format, args...))
	}
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warn(fmt.Sprintf(format, args...))
	}
}

// LogImageProcessed logs when a candidate has been compared
func LogImageProcessed(path string, success bool, errMsg string) {
	l := current()
	if l == nil {
		return
	}
	if success {
		l.Debug("processed", "path", path)
	} else {
		l.Warn("failed", "path", path, "error", errMsg)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
