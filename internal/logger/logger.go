package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
)

var base = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init installs the process-wide JSON logger on stdout.
func Init(debug bool) {
	SetOutput(os.Stdout, debug)
	Info("logger initialized", map[string]any{"debug": debug})
}

// SetOutput redirects log records to w. Tests use it to capture output.
func SetOutput(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	base = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func Debug(msg string, fields map[string]any) {
	log(slog.LevelDebug, msg, fields)
}

func Info(msg string, fields map[string]any) {
	log(slog.LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	log(slog.LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	log(slog.LevelError, msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	log(slog.LevelError, msg, fields)
	os.Exit(1)
}

func log(level slog.Level, msg string, fields map[string]any) {
	base.LogAttrs(context.Background(), level, msg, attrs(fields)...)
}

// attrs orders fields by key so records are stable across runs.
func attrs(fields map[string]any) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
