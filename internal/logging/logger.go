package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Config holds logger configuration
type Config struct {
	Level      slog.Level
	Console    io.Writer // Human-readable output (default: stderr)
	NoColor    bool      // Disable ANSI colors on the console
	OutputFile string    // Path to JSON log file (empty = console only)
	MaxSize    int64     // Max size in bytes before rotation (default: 10MB)
	MaxBackups int       // Number of old log files to keep (default: 3)
	AddSource  bool      // Add source file and line number
}

// Logger owns the handlers installed as the slog default
type Logger struct {
	slog   *slog.Logger
	config Config
	file   *os.File
	mu     sync.Mutex
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Initialize builds the logger and installs it as slog.Default so component
// loggers created with slog.Default().With(...) share it. Calling it again
// replaces the previous logger.
func Initialize(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
	}
	globalLogger = logger
	slog.SetDefault(logger.slog)
	return nil
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(config Config) (*Logger, error) {
	if config.MaxSize == 0 {
		config.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 3
	}
	if config.Console == nil {
		config.Console = os.Stderr
	}

	logger := &Logger{config: config}

	console := tint.NewHandler(config.Console, &tint.Options{
		Level:      config.Level,
		TimeFormat: time.Kitchen,
		AddSource:  config.AddSource,
		NoColor:    config.NoColor || !isTerminal(config.Console),
	})
	handlers := []slog.Handler{console}

	if config.OutputFile != "" {
		dir := filepath.Dir(config.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}

		if err := logger.rotateIfNeeded(); err != nil {
			return nil, fmt.Errorf("failed to rotate logs: %w", err)
		}

		file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.OutputFile, err)
		}
		logger.file = file

		// the file always records debug detail
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	}

	if len(handlers) == 1 {
		logger.slog = slog.New(console)
	} else {
		logger.slog = slog.New(fanout(handlers))
	}
	return logger, nil
}

// rotateIfNeeded shifts file -> file.1 -> file.2 ... once MaxSize is reached
func (l *Logger) rotateIfNeeded() error {
	if l.config.OutputFile == "" {
		return nil
	}

	info, err := os.Stat(l.config.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if info.Size() < l.config.MaxSize {
		return nil
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i)
		newPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	backupPath := fmt.Sprintf("%s.1", l.config.OutputFile)
	if err := os.Rename(l.config.OutputFile, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return nil
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Close closes the global logger
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// fanout dispatches each record to every handler that accepts its level
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
