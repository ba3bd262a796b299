// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configure Setup.
type Options struct {
	// Level is a zerolog level name; empty means warn.
	Level string
	// JSON writes JSON lines instead of console output.
	JSON bool
	// NoColor disables console colors.
	NoColor bool
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Setup replaces the global logger and routes the standard library logger
// through it. An unknown level name falls back to warn and is reported.
func Setup(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.WarnLevel
	unknown := false
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(opts.Level)
		if err != nil || lvl == zerolog.NoLevel {
			unknown = true
		} else {
			level = lvl
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	w := out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: out, NoColor: opts.NoColor, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	if unknown {
		log.Warn().Str("level", opts.Level).Msg("unknown log level, using warn")
	}
	return log.Logger
}

// Discard silences the global logger.
func Discard() {
	log.Logger = zerolog.Nop()
}
