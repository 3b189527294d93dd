// Package logging provides component loggers with file rotation for
// the pairscan tools.
//
// Basic usage:
//
//	cfg := logging.Config{
//	    Level: "info",
//	    Path:  logging.DefaultLogPath(),
//	}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("walker")
//	logger.Info("scan started", "root", "/data/kits")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) charmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned for an unrecognized log level string.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to per-component level
	// overrides.
	Components map[string]string

	// ConsoleLevel mirrors logs at this level and above to stderr.
	// Empty disables console output.
	ConsoleLevel string
}

// backends is the pair of sinks a Logger writes through. Swapped
// atomically when Init or Close changes the destination, so loggers
// captured in package variables before Init pick up the real sinks.
type backends struct {
	file    *log.Logger
	console *log.Logger
}

// Logger wraps charmbracelet/log with a component prefix. It writes to
// the shared log file and optionally mirrors to stderr.
type Logger struct {
	component string
	be        atomic.Pointer[backends]
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	be := l.be.Load()
	emit(be.file, level, msg, args...)
	if be.console != nil {
		emit(be.console, level, msg, args...)
	}
}

func emit(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// With returns a new logger carrying additional key-value context. The
// derived logger binds the sinks current at call time and is not
// rebound by a later Init; derive it where it is used.
func (l *Logger) With(args ...interface{}) *Logger {
	be := l.be.Load()
	db := &backends{file: be.file.With(args...)}
	if be.console != nil {
		db.console = be.console.With(args...)
	}
	derived := &Logger{component: l.component}
	derived.be.Store(db)
	return derived
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger

	consoleEnabled bool
	consoleLevel   Level
}

var globalState = &state{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system. Until it is called every logger
// writes to io.Discard, so library code may call Get freely; loggers
// already handed out start writing to the configured file once Init
// returns.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level)
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	consoleEnabled := false
	var consoleLevel Level
	if cfg.ConsoleLevel != "" {
		consoleLevel, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		consoleEnabled = true
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	// The new configuration is valid; swap it in.
	if globalState.writer != nil {
		if err := globalState.writer.Close(); err != nil {
			_ = writer.Close()
			return fmt.Errorf("closing existing writer: %w", err)
		}
	}
	globalState.level = level
	globalState.components = components
	globalState.consoleEnabled = consoleEnabled
	globalState.consoleLevel = consoleLevel
	globalState.writer = writer
	globalState.initialized = true

	// Loggers handed out before this Init keep their identity; point
	// them at the new sinks.
	for component, lg := range globalState.loggers {
		lg.be.Store(buildBackends(component))
	}

	return nil
}

// Get returns the logger for the given component, creating it on first
// use. Component level overrides from the config apply here.
func Get(component string) *Logger {
	globalState.mu.RLock()
	if logger, ok := globalState.loggers[component]; ok {
		globalState.mu.RUnlock()
		return logger
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := newComponentLogger(component)
	globalState.loggers[component] = logger
	return logger
}

// newComponentLogger builds a logger for component. Callers hold
// globalState.mu.
func newComponentLogger(component string) *Logger {
	lg := &Logger{component: component}
	lg.be.Store(buildBackends(component))
	return lg
}

// buildBackends assembles the sinks for component from the current
// global state. Callers hold globalState.mu.
func buildBackends(component string) *backends {
	level := globalState.level
	if override, ok := globalState.components[component]; ok {
		level = override
	}

	if !globalState.initialized {
		return &backends{file: log.NewWithOptions(io.Discard, log.Options{
			Level:  level.charmLevel(),
			Prefix: component,
		})}
	}

	be := &backends{
		file: log.NewWithOptions(globalState.writer, log.Options{
			Level:           level.charmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}
	if globalState.consoleEnabled {
		be.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           globalState.consoleLevel.charmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return be
}

// Close flushes and closes the log file. Call it on application exit.
// Loggers already handed out stay usable and write to io.Discard until
// a new Init.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	// Detach every logger from the writer before closing it.
	globalState.initialized = false
	for component, lg := range globalState.loggers {
		lg.be.Store(buildBackends(component))
	}

	if globalState.writer != nil {
		if err := globalState.writer.Close(); err != nil {
			return fmt.Errorf("closing log writer: %w", err)
		}
		globalState.writer = nil
	}

	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/pairscan/pairscan.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "pairscan", "pairscan.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
