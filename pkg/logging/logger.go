// Package logging configures the zerolog logger shared by the Gamma client,
// the paginator, the dump sinks and gamma-fetch.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a textual log level as read from LOG_LEVEL.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Component names, attached to every log line as the "component" field.
const (
	ComponentClient    = "gamma-client"
	ComponentPaginator = "paginator"
	ComponentDump      = "dump"
	ComponentCLI       = "gamma-fetch"
)

// consoleTimeFormat keeps pretty output short; JSON output uses RFC 3339.
const consoleTimeFormat = time.TimeOnly

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr so stdout stays free for fetch results.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the configured logger as the global zerolog logger and
// returns it. Loggers from NewLogger derive from it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	log.Logger = zerolog.New(writer(cfg)).With().Timestamp().Logger()
	return log.Logger
}

func writer(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.Pretty {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
}

// parseLevel maps a LogLevel onto zerolog. Anything outside
// debug, info, warn and error falls back to info.
func parseLevel(level LogLevel) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(string(level)))
	if name == "warning" {
		name = string(LevelWarn)
	}

	parsed, err := zerolog.ParseLevel(name)
	if err != nil || parsed < zerolog.DebugLevel || parsed > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// NewLogger returns a child of the global logger tagged with component.
// Call Setup first: the child captures the global logger at call time.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels as used in this module:
//
//	debug  request flow, session open/release, early stop, discarded pages
//	info   fetch summaries, dumped responses
//	warn   non-200 responses, skipped pages, unparsable records
//	error  transport failures, first page failures
//
// Common fields: endpoint, status, error_class, page, offset, limit,
// pages, failed, records, early_stop, stop_offset, discarded, sink, key,
// duration.
