// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger fields
const (
	COMPONENT  = "component"
	COLLECTION = "collection"
	SECTION    = "section"
	CHAT       = "chat"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Init sets the global level and writer. Unknown levels fall back to info.
// A terminal on stderr gets console output, anything else JSON lines.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// New returns a logger tagged with component=name.
func New(name string) zerolog.Logger {
	return log.With().Str(COMPONENT, name).Logger()
}
