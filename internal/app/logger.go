package app

import (
	"io"
	"os"
	"time"

	"todoapi/internal/config"

	"github.com/rs/zerolog"
)

// NewLogger builds the application logger. Outside prod it logs human-readable
// console output at debug level; prod gets JSON at info level.
func NewLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	if cfg.App.Env != "prod" {
		level = zerolog.DebugLevel
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}
	zerolog.SetGlobalLevel(level)

	return zerolog.New(w).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}
