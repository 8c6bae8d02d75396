package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with convenience methods.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level string // "debug", "info", "warn", "error"
	Color bool
}

// DefaultConfig returns the configuration for an interactive run on stderr.
func DefaultConfig() Config {
	return Config{
		Level: "info",
		Color: IsTerminal(os.Stderr),
	}
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(cfg)),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{Logger: zap.New(core)}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Stage logs the start of a long step and returns a func that logs its completion with
// the elapsed time and any extra fields.
func (l *Logger) Stage(name string) func(fields ...zap.Field) {
	start := time.Now()
	l.Info(name + "...")
	return func(fields ...zap.Field) {
		fields = append(fields, zap.Duration("took", time.Since(start)))
		l.Debug(name+" done", fields...)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// encoderConfig returns the console encoder configuration.
func encoderConfig(cfg Config) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		TimeKey:        zapcore.OmitKey,
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "M",
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Color {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return enc
}
