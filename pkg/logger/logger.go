package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LevelCritical is logged through WithLevel, so it never exits the process.
const LevelCritical = zerolog.FatalLevel

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

type zerologLogger struct {
	base zerolog.Logger
}

func NewFromEnv() Logger {
	env := normalizeValue(os.Getenv("ENV"))
	level := parseLevel(os.Getenv("LOG_LEVEL"), env)
	format := parseFormat(os.Getenv("LOG_FORMAT"))
	return New(os.Stdout, level, format)
}

func New(output io.Writer, level zerolog.Level, format string) Logger {
	if normalizeValue(format) == "text" {
		output = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}

	base := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &zerologLogger{base: base}
}

func (l *zerologLogger) Debug(message string, args ...any) {
	l.log(l.base.Debug(), message, args)
}

func (l *zerologLogger) Info(message string, args ...any) {
	l.log(l.base.Info(), message, args)
}

func (l *zerologLogger) Warn(message string, args ...any) {
	l.log(l.base.Warn(), message, args)
}

func (l *zerologLogger) Error(message string, args ...any) {
	l.log(l.base.Error(), message, args)
}

func (l *zerologLogger) Critical(message string, args ...any) {
	l.log(l.base.WithLevel(LevelCritical), message, args)
}

func (l *zerologLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.log(l.base.Warn().Err(err), message, args)
}

func (l *zerologLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.log(l.base.Error().Err(err), message, args)
}

func (l *zerologLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	return &zerologLogger{base: l.base.With().Fields(args).Logger()}
}

func (l *zerologLogger) log(event *zerolog.Event, message string, args []any) {
	if event == nil {
		return
	}
	if len(args) > 0 {
		event = event.Fields(args)
	}
	event.Msg(message)
}

func parseLevel(value string, env string) zerolog.Level {
	switch normalizeValue(value) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		if env == "development" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "critical", "fatal":
		return LevelCritical
	default:
		if env == "development" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
}

func parseFormat(value string) string {
	switch normalizeValue(value) {
	case "json", "text":
		return normalizeValue(value)
	default:
		return "json"
	}
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
