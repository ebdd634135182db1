package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog builds the zerolog logger handed to the database and influx
// managers. Output is console formatted without colors so it can share a
// file with the slog text handler. provider, when set, adds the current
// match and tick to every event.
func NewZerolog(w io.Writer, level string, provider ContextProvider) zerolog.Logger {
	var lvl zerolog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = zerolog.DebugLevel
	case "WARN":
		lvl = zerolog.WarnLevel
	case "ERROR":
		lvl = zerolog.ErrorLevel
	case "TRACE":
		lvl = zerolog.TraceLevel
	default:
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	if provider == nil {
		return logger
	}
	return logger.Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		for _, a := range provider() {
			e.Str(a.Key, a.Value.String())
		}
	}))
}
