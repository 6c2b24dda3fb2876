// Package logger is the zerolog setup shared by the phishguard server and CLI.
// Every logger carries the service name; packages narrow it with
// WithComponent and requests with WithRequestID or WithAnalysisID.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// DefaultService names the emitting process when Config.Service is empty
const DefaultService = "phishguard"

// Logger wraps zerolog.Logger with scoped helpers
type Logger struct {
	zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Service    string
	Level      string
	Format     string // "console" or "json"
	TimeFormat string
	Output     io.Writer // defaults to os.Stdout
}

// New creates a logger. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	service := cfg.Service
	if service == "" {
		service = DefaultService
	}

	return &Logger{
		Logger: zerolog.New(out).
			Level(ParseLevel(cfg.Level)).
			With().
			Timestamp().
			Str("service", service).
			Logger(),
	}
}

// NewProduction creates a JSON logger at info level
func NewProduction(service string) *Logger {
	return New(Config{Service: service, Level: "info", Format: "json"})
}

// NewCLI creates a console logger on stderr so command output on stdout stays
// clean. Only warnings and errors are shown unless verbose is set.
func NewCLI(verbose bool) *Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return New(Config{Level: level, Format: "console", TimeFormat: "15:04:05", Output: os.Stderr})
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a new logger with the component field set
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With().Str("component", component).Logger()}
}

// WithRequestID returns a new logger with the request ID field set
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With().Str("request_id", requestID).Logger()}
}

// WithAnalysisID returns a new logger tagged with an analysis ID
func (l *Logger) WithAnalysisID(analysisID string) *Logger {
	return &Logger{Logger: l.With().Str("analysis_id", analysisID).Logger()}
}

// ParseLevel maps a config level to zerolog. Matching is case-insensitive,
// "warning" and "off" are accepted, anything unrecognised is info.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
