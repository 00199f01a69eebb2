package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"video_trend_ranker/config"
)

// Manager manages application loggers and their underlying files.
type Manager struct {
	infoLogger  zerolog.Logger
	errorLogger zerolog.Logger
	infoFile    *os.File
	errorFile   *os.File
}

var (
	global   *Manager
	fallback = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Initialize configures the global logger manager.
func Initialize(cfg *config.Config) (*Manager, error) {
	manager, err := New(cfg)
	if err != nil {
		return nil, err
	}
	global = manager
	return manager, nil
}

// InitializeQuiet configures the global logger manager without echoing
// info entries to stdout, for commands that print their own output.
func InitializeQuiet(cfg *config.Config) (*Manager, error) {
	manager, err := newManager(cfg, nil)
	if err != nil {
		return nil, err
	}
	global = manager
	return manager, nil
}

// New creates a new Manager instance.
func New(cfg *config.Config) (*Manager, error) {
	return newManager(cfg, os.Stdout)
}

func newManager(cfg *config.Config, console io.Writer) (*Manager, error) {
	dir := cfg.LogDirectory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	outputFile := cfg.LogOutputFile
	if outputFile == "" {
		outputFile = "app.log"
	}
	errorFile := cfg.LogErrorFile
	if errorFile == "" {
		errorFile = "app.error.log"
	}

	infoHandle, err := os.OpenFile(filepath.Join(dir, outputFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open info log file: %w", err)
	}

	errorHandle, err := os.OpenFile(filepath.Join(dir, errorFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		infoHandle.Close()
		return nil, fmt.Errorf("open error log file: %w", err)
	}

	var info io.Writer = infoHandle
	if console != nil {
		info = io.MultiWriter(console, infoHandle)
	}

	m := NewWithWriters(cfg.LogLevel, info, io.MultiWriter(os.Stderr, errorHandle))
	m.infoFile = infoHandle
	m.errorFile = errorHandle
	return m, nil
}

// NewWithWriters builds a Manager over arbitrary writers. Files are not
// owned, so Close is a no-op.
func NewWithWriters(level string, info, errs io.Writer) *Manager {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return &Manager{
		infoLogger:  zerolog.New(info).Level(lvl).With().Timestamp().Logger(),
		errorLogger: zerolog.New(errs).Level(lvl).With().Timestamp().Logger(),
	}
}

// Info starts an info level entry.
func (m *Manager) Info() *zerolog.Event {
	return m.infoLogger.Info()
}

// Debug starts a debug level entry.
func (m *Manager) Debug() *zerolog.Event {
	return m.infoLogger.Debug()
}

// Warn starts a warn level entry on the info stream.
func (m *Manager) Warn() *zerolog.Event {
	return m.infoLogger.Warn()
}

// Error starts an error level entry.
func (m *Manager) Error() *zerolog.Event {
	return m.errorLogger.Error()
}

// Fatal logs on the error stream and exits.
func (m *Manager) Fatal() *zerolog.Event {
	return m.errorLogger.Fatal()
}

// WithComponent returns a child of the info logger tagged with component.
func (m *Manager) WithComponent(component string) zerolog.Logger {
	return m.infoLogger.With().Str("component", component).Logger()
}

// Close releases file handles.
func (m *Manager) Close() error {
	var firstErr error
	if m.infoFile != nil {
		if err := m.infoFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.errorFile != nil {
		if err := m.errorFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetGlobal installs m as the global manager. Used by tests.
func SetGlobal(m *Manager) {
	global = m
}

// Close releases the global logger manager if initialized.
func Close() error {
	if global == nil {
		return nil
	}
	err := global.Close()
	global = nil
	return err
}

// Info starts an info entry on the global logger.
func Info() *zerolog.Event {
	if global != nil {
		return global.Info()
	}
	return fallback.Info()
}

// Debug starts a debug entry on the global logger.
func Debug() *zerolog.Event {
	if global != nil {
		return global.Debug()
	}
	return fallback.Debug()
}

// Warn starts a warn entry on the global logger.
func Warn() *zerolog.Event {
	if global != nil {
		return global.Warn()
	}
	return fallback.Warn()
}

// Error starts an error entry on the global logger.
func Error() *zerolog.Event {
	if global != nil {
		return global.Error()
	}
	return fallback.Error()
}

// Fatal logs on the global error logger and exits.
func Fatal() *zerolog.Event {
	if global != nil {
		return global.Fatal()
	}
	return fallback.Fatal()
}

// WithComponent returns a global child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	if global != nil {
		return global.WithComponent(component)
	}
	return fallback.With().Str("component", component).Logger()
}
