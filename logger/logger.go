// Package logger configures the process-wide zerolog logger.
//
// Application code logs through github.com/rs/zerolog/log; Setup only decides
// level and output format.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Development gets a human-readable console
// writer, every other environment gets JSON lines for log aggregation.
func Setup(level, env string) {
	Configure(os.Stdout, level, env)
}

// Configure is Setup with an explicit destination.
func Configure(w io.Writer, level, env string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "otica-api").Logger()
}

// ParseLevel maps LOG_LEVEL to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}
