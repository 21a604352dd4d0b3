// Package log configures the process-wide zerolog logger.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global logger. Production writes JSON to stdout; every other env uses the console writer.
// An unknown level falls back to info.
func Init(env, level string) {
	setup(os.Stdout, env, level)
}

func setup(w io.Writer, env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if !strings.EqualFold(env, "production") {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(cw).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// TokenRef returns a short, log-safe reference for a hashed session id.
func TokenRef(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:8]
}
