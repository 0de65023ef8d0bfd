// Package logging configures the zerolog.Logger every subcommand shares:
// a console writer to stderr by default, or structured JSON lines to
// stderr when TRANSITCAT_LOG_FORMAT=json, both carrying the invoking
// subcommand as a field.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with the running subcommand's name.
// Output goes to stderr so stdout stays reserved for the JSON responses
// process_requests writes there.
func New(subcommand string) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if os.Getenv("TRANSITCAT_LOG_FORMAT") == "json" {
		w = os.Stderr
	}
	return zerolog.New(w).With().Timestamp().Str("subcommand", subcommand).Logger()
}
