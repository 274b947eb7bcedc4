// Package logging provides component loggers backed by charmbracelet/log.
// The terminal UI owns the screen, so output goes to a file; CLI commands may
// additionally mirror records to stderr.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//	logging.Get("preview").Info("resolved", "path", p)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a logging severity.
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
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// ErrInvalidLevel is returned for unrecognised level names.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses debug, info, warn or error. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures Init.
type Config struct {
	Level string
	// Path of the log file; empty uses DefaultLogPath.
	Path string
	// Components overrides Level per component name.
	Components map[string]string
	// ConsoleLevel mirrors records at or above this level to stderr.
	// Empty disables console output.
	ConsoleLevel string
}

// Logger is a component-scoped logger.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.log(LevelDebug, msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.log(LevelInfo, msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.log(LevelWarn, msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.log(LevelError, msg, keyvals...) }

// With returns a logger that attaches keyvals to every record.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	out := &Logger{file: l.file.With(keyvals...), component: l.component}
	if l.console != nil {
		out.console = l.console.With(keyvals...)
	}
	return out
}

// Component returns the name the logger was created for.
func (l *Logger) Component() string { return l.component }

func (l *Logger) log(level Level, msg string, keyvals ...interface{}) {
	emit(l.file, level, msg, keyvals...)
	if l.console != nil {
		emit(l.console, level, msg, keyvals...)
	}
}

func emit(logger *log.Logger, level Level, msg string, keyvals ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, keyvals...)
	case LevelInfo:
		logger.Info(msg, keyvals...)
	case LevelWarn:
		logger.Warn(msg, keyvals...)
	case LevelError:
		logger.Error(msg, keyvals...)
	}
}

type registry struct {
	mu          sync.RWMutex
	initialized bool
	out         *os.File
	level       Level
	components  map[string]Level
	console     bool
	consoleLvl  Level
	loggers     map[string]*Logger
}

var global = &registry{
	components: make(map[string]Level),
	loggers:    make(map[string]*Logger),
}

// Init opens the log file and reconfigures every logger handed out so far.
// Before Init, loggers discard their output.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	components := make(map[string]Level, len(cfg.Components))
	for name, raw := range cfg.Components {
		l, err := ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", name, err)
		}
		components[name] = l
	}

	var consoleLvl Level
	if cfg.ConsoleLevel != "" {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.out != nil {
		_ = global.out.Close()
	}
	global.out = f
	global.level = level
	global.components = components
	global.console = cfg.ConsoleLevel != ""
	global.consoleLvl = consoleLvl
	global.initialized = true

	for name, logger := range global.loggers {
		*logger = *newLogger(name)
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *Logger {
	global.mu.RLock()
	logger, ok := global.loggers[component]
	global.mu.RUnlock()
	if ok {
		return logger
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if logger, ok := global.loggers[component]; ok {
		return logger
	}
	logger = newLogger(component)
	global.loggers[component] = logger
	return logger
}

// newLogger must be called with global.mu held.
func newLogger(component string) *Logger {
	level := global.level
	if l, ok := global.components[component]; ok {
		level = l
	}

	var w io.Writer = io.Discard
	if global.initialized && global.out != nil {
		w = global.out
	}
	logger := &Logger{
		component: component,
		file: log.NewWithOptions(w, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}
	if global.initialized && global.console {
		logger.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           global.consoleLvl.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return logger
}

// Close flushes the log file and returns every logger to discard mode.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.initialized {
		return nil
	}
	var err error
	if global.out != nil {
		err = global.out.Close()
		global.out = nil
	}
	global.initialized = false
	global.console = false
	for name, logger := range global.loggers {
		*logger = *newLogger(name)
	}
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

// DefaultLogPath is $XDG_STATE_HOME/arangr/arangr.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "arangr", "arangr.log")
}
