// Package log provides structured logging for bloom.
// Lines are written to a debug log file (the terminal belongs to Bubble Tea)
// and mirrored onto a pubsub broker so the TUI can show a live log overlay.
// Logging is enabled with --debug or BLOOM_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/bloom/internal/pubsub"
)

// Level represents log severity.
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

// Category groups related log messages.
type Category string

const (
	CatBreath  Category = "breath"  // Phase clock transitions
	CatSession Category = "session" // Session controller lifecycle
	CatGarden  Category = "garden"  // Oasis growth and persistence
	CatZen     Category = "zen"     // Gamification client and service
	CatAPI     Category = "api"     // HTTP server
	CatGuide   Category = "guide"   // WebSocket remote guide
	CatDB      Category = "db"      // Database operations
	CatConfig  Category = "config"  // Configuration loading/saving
	CatWatcher Category = "watcher" // Patterns file watcher
	CatUI      Category = "ui"      // TUI updates
	CatCache   Category = "cache"   // Cache operations
	CatSound   Category = "sound"   // Audio cues
)

// Logger writes formatted entries to a writer and a broker.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init opens path for appending and installs it as the global logger.
// The returned function closes the file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		var f *os.File
		f, initErr = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user supplied debug log path
		if initErr != nil {
			return
		}
		defaultLogger = newLogger(f, f)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

// InitWithTeaLog uses tea.LogToFile so the standard library logger used by
// Bubble Tea ends up in the same file.
func InitWithTeaLog(path, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	defaultLogger = newLogger(f, f)
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger writing to w. Intended for tests.
func InitWriter(w io.Writer) {
	defaultLogger = newLogger(nil, w)
}

func newLogger(f *os.File, w io.Writer) *Logger {
	return &Logger{
		file:     f,
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.enabled = enabled
	defaultLogger.mu.Unlock()
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.minLevel = level
	defaultLogger.mu.Unlock()
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

// Format renders one entry.
// 2026-10-16T10:45:00 [INFO] [session] started intention=just-breathe
func Format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Format(time.Now(), level, cat, msg, fields...)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, entry)
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to log lines until ctx is cancelled.
// Returns nil when logging has not been initialized.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil || defaultLogger.broker == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
