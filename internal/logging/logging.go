// Package logging wraps log/slog behind a small interface so the engine,
// driver and RPC layers log the same structured fields.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field         { return Field{Key: key, Value: value} }

// Err logs err under "error". A nil error logs as "".
func Err(err error) Field {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Field{Key: "error", Value: msg}
}

type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Config is the logging block of the server config. Output is only set
// programmatically and defaults to stderr.
type Config struct {
	Level     string    `yaml:"level"`
	Format    string    `yaml:"format"`
	AddSource bool      `yaml:"add_source"`
	Output    io.Writer `yaml:"-"`
}

// New builds a slog-backed Logger. Format "json" selects the JSON handler;
// anything else selects text. Unknown levels mean info.
func New(cfg Config) Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: levelOf(cfg.Level), AddSource: cfg.AddSource}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	return slogLogger{slog.New(h)}
}

// NewFromEnv reads LFMF_LOG_LEVEL and LFMF_LOG_FORMAT, then LOG_LEVEL and
// LOG_FORMAT.
func NewFromEnv() Logger {
	env := func(primary, fallback string) string {
		if v := os.Getenv(primary); v != "" {
			return v
		}
		return os.Getenv(fallback)
	}
	return New(Config{
		Level:  env("LFMF_LOG_LEVEL", "LOG_LEVEL"),
		Format: env("LFMF_LOG_FORMAT", "LOG_FORMAT"),
	})
}

func Noop() Logger { return discard{} }

func levelOf(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) log(ctx context.Context, lvl slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.l.Enabled(ctx, lvl) {
		return
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	s.l.LogAttrs(ctx, lvl, msg, attrs...)
}

func (s slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s slogLogger) With(fields ...Field) Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = slog.Any(f.Key, f.Value)
	}
	return slogLogger{s.l.With(args...)}
}

type discard struct{}

func (discard) Debug(context.Context, string, ...Field) {}
func (discard) Info(context.Context, string, ...Field)  {}
func (discard) Warn(context.Context, string, ...Field)  {}
func (discard) Error(context.Context, string, ...Field) {}
func (discard) With(...Field) Logger                    { return discard{} }
