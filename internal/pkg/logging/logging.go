package logging

import (
	"io"
	"log/slog"
	"strings"
)

const serviceName = "friendsystem"

// SetupLogger installs the default logger: JSON lines in production and text
// everywhere else. Every entry carries the service name and environment, and
// debug logging also records the source location.
func SetupLogger(appEnv, logLevel string, out io.Writer) {
	level := ParseLevel(logLevel)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if appEnv == "production" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", serviceName, "env", appEnv))
}

// ParseLevel maps a configured level name such as "debug" or "WARN" to a
// slog level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
