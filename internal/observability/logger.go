package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"postscrape/internal/config"
)

// Logger пишет JSON в файл с ротацией и текст в stderr
type Logger struct {
	logger *slog.Logger
	file   *lumberjack.Logger
}

func NewLogger(cfg config.ObservabilityConfig) (*Logger, error) {
	level := ParseLevel(cfg.LogLevel)
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	var file *lumberjack.Logger
	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	}

	return &Logger{
		logger: slog.New(fanout(handlers)),
		file:   file,
	}, nil
}

// NewWriterLogger — логгер без файла, для тестов и отладки
func NewWriterLogger(w io.Writer, level string) *Logger {
	return &Logger{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})),
	}
}

// Nop отбрасывает все записи
func Nop() *Logger {
	return NewWriterLogger(io.Discard, "error")
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.logger.Error(msg, fields...)
}

// With возвращает логгер с постоянными полями
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{logger: l.logger.With(fields...), file: l.file}
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

type multiHandler []slog.Handler

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return multiHandler(handlers)
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
