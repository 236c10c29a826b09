// Package logging provides the structured logger used across do-snapmanager.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/raoulx24/do-snapmanager/internal/config"
)

// Logger takes a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// ZeroLogger is a Logger backed by zerolog.
type ZeroLogger struct {
	zlog   zerolog.Logger
	closer io.Closer
}

// New builds a logger from the logging config. An empty File logs to stderr,
// otherwise output goes to a rotating file.
func New(cfg config.LoggingConfig) (*ZeroLogger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // MB, 0 means lumberjack's default
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out, closer = rotator, rotator
	}

	if cfg.Format != "json" {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.NoColor = cfg.File != ""
			w.FormatCaller = shortCaller
		})
	}

	zlog := zerolog.New(out).Level(level).With().
		CallerWithSkipFrameCount(4).
		Timestamp().
		Logger()

	return &ZeroLogger{zlog: zlog, closer: closer}, nil
}

// Nop discards everything.
func Nop() *ZeroLogger {
	return &ZeroLogger{zlog: zerolog.Nop()}
}

func (l *ZeroLogger) Debug(msg string, kv ...any) { l.write(l.zlog.Debug(), msg, kv) }
func (l *ZeroLogger) Info(msg string, kv ...any)  { l.write(l.zlog.Info(), msg, kv) }
func (l *ZeroLogger) Warn(msg string, kv ...any)  { l.write(l.zlog.Warn(), msg, kv) }
func (l *ZeroLogger) Error(msg string, kv ...any) { l.write(l.zlog.Error(), msg, kv) }

// Close flushes and closes the log file, if any.
func (l *ZeroLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *ZeroLogger) write(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	ev.Fields(fields(kv)).Msg(msg)
}

// fields turns alternating key/value pairs into a map. Errors are rendered
// as strings and a dangling key is kept under "!BADKEY".
func fields(kv []any) map[string]any {
	out := make(map[string]any, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			out["!BADKEY"] = key
			break
		}
		val := kv[i+1]
		if err, ok := val.(error); ok && err != nil {
			val = err.Error()
		}
		out[key] = val
	}
	return out
}

func shortCaller(i any) string {
	c, _ := i.(string)
	if c == "" {
		return ""
	}
	parts := strings.Split(c, "/")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s/%s", parts[len(parts)-2], parts[len(parts)-1])
	}
	return filepath.Base(c)
}
