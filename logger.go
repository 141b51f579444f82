package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

func newLogger(output io.Writer, level string) *slog.Logger {
	handler := tint.NewHandler(output, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: "2006-01-02 15:04:05.000Z07:00",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// parseLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
