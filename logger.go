package main

import (
	"io"

	"github.com/rs/zerolog"
)

// appLogger discards everything until initLogger is called (e.g. in tests).
var appLogger = zerolog.New(io.Discard)

// initLogger configures the global logger. Logs go to out (stderr in main) so
// that stdout carries only the report.
func initLogger(out io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	appLogger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func logger() *zerolog.Logger {
	return &appLogger
}
