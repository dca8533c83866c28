package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Handler renders records as single lines with a colored level column,
// writing to stdout and, when configured, a size-rotated log file.
type Handler struct {
	mu    *sync.Mutex // shared across WithAttrs copies
	out   io.Writer
	attrs []slog.Attr
	level slog.Level
}

// Init installs the process-wide logger. path is the log file to rotate
// into; empty means stdout only.
func Init(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var out io.Writer = os.Stdout
	if path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
		})
	}
	slog.SetDefault(slog.New(&Handler{mu: &sync.Mutex{}, out: out, level: level}))
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()
	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	line := fmt.Sprintf("%s | %-5s | %s",
		r.Time.Format("2006-01-02T15:04:05"), level, r.Message)
	for _, attr := range h.attrs {
		line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
	}
	r.Attrs(func(attr slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
		return true
	})
	line += "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(line))
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{mu: h.mu, out: h.out, attrs: merged, level: h.level}
}

func (h *Handler) WithGroup(string) slog.Handler { return h }
