package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/hexfront/tactics/internal/config"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel converts a config level to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Manager owns the session logger and the sinks behind it.
type Manager struct {
	logger  zerolog.Logger
	file    *os.File
	gelf    *gelf.Writer
	logPath string
}

// NewManager returns a manager whose logger discards everything until Setup
// is called.
func NewManager() *Manager {
	return &Manager{logger: zerolog.Nop()}
}

// Setup builds the logger: console output, a session log file under
// cfg.Dir and, when enabled, a Graylog GELF sink. A nil console disables
// console output.
func (m *Manager) Setup(cfg config.LogConfig, name string, start time.Time, console io.Writer) error {
	var writers []io.Writer

	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		m.logPath = LogFilePath(cfg.Dir, name, start)
		f, err := os.OpenFile(m.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		m.file = f
		writers = append(writers, f)
	}

	if cfg.GraylogEnabled {
		w, err := gelf.NewWriter(cfg.GraylogAddress)
		if err != nil {
			return fmt.Errorf("failed to connect to graylog at %s: %w", cfg.GraylogAddress, err)
		}
		m.gelf = w
		writers = append(writers, w)
	}

	if len(writers) == 0 {
		m.logger = zerolog.Nop()
		return nil
	}

	m.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", name).
		Logger()
	m.logger.Info().Str("level", ParseLevel(cfg.Level).String()).Msg("Logging initialized")
	return nil
}

// Logger returns the configured logger.
func (m *Manager) Logger() zerolog.Logger {
	return m.logger
}

// Component returns a child logger tagged with a component name.
func (m *Manager) Component(name string) zerolog.Logger {
	return m.logger.With().Str("component", name).Logger()
}

// FilePath returns the session log file, empty when file logging is off.
func (m *Manager) FilePath() string {
	return m.logPath
}

// Close releases the log file and the Graylog connection.
func (m *Manager) Close() error {
	var errs []error
	if m.gelf != nil {
		errs = append(errs, m.gelf.Close())
		m.gelf = nil
	}
	if m.file != nil {
		errs = append(errs, m.file.Close())
		m.file = nil
	}
	m.logger = zerolog.Nop()
	return errors.Join(errs...)
}
