package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"threadline/internal/config"
)

// New builds the process logger: human readable on a console in
// development, JSON lines otherwise.
func New(cfg *config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.IsDevelopment() {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}
	return FromWriter(w, cfg.LogLevel)
}

// FromWriter builds a logger writing to w. Unknown levels fall back to info.
func FromWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
