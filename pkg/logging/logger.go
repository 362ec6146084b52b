// Package logging configures zerolog for the library and the proxy service.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component names carried in the "component" field.
const (
	ComponentClient     = "digi-client"
	ComponentBrowse     = "browse"
	ComponentCollection = "collection"
	ComponentPagination = "pagination"
	ComponentServer     = "server"
)

// Config holds logger configuration.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// "warning" is accepted for warn, empty means info.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns info-level JSON logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  zerolog.InfoLevel.String(),
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger every component logger derives
// from. It fails on an unknown level.
func Setup(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger, nil
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
	return level, nil
}

// NewLogger derives a logger for one component from the global logger. Call
// it after Setup; loggers created earlier keep the previous output.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// FeedLogger derives a pagination logger tagged with the feed name, e.g.
// "level" or "type-5".
func FeedLogger(feed string) zerolog.Logger {
	return log.With().Str("component", ComponentPagination).Str("feed", feed).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-item failures in bulk fetches and detail lookups
//   - Cache hits and conditional requests
//   - Page merges (scanned, matched, has_more)
//
// Info: Normal operation events
//   - Session mounted, refreshed or removed
//   - Server startup/shutdown
//   - HTTP requests served
//
// Warn: Warning conditions that don't prevent operation
//   - Page fetch failures (later pages are swallowed)
//   - 429 cool-downs started by the API
//   - Cache errors (request falls through to the API)
//
// Error: Error conditions requiring attention
//   - Whole-screen failures (every bulk fetch failed)
//   - Service startup failures and configuration errors
//
// Context Fields:
//   - component: digi-client, browse, pagination, server
//   - feed: level or type-{id}
//   - session: session ID
//   - page: 1-based page number
//   - id: Digimon, level or type ID
//   - error_class: client, server, rate_limit, network, decode
//   - request_id: HTTP request ID
