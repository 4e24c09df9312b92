package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type zapLogger struct {
	z *zap.Logger
}

// NewWriterLogger builds a zap-backed logger that writes console-encoded
// lines to w. Debug lines are dropped unless verbose is set.
func NewWriterLogger(w io.Writer, verbose bool) Logger {
	if w == nil {
		return NopLogger{}
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zapLogger{z: zap.New(core)}
}

func (l zapLogger) fields(obj any) []zap.Field {
	if obj == nil {
		return nil
	}
	return []zap.Field{zap.Any("obj", obj)}
}

func (l zapLogger) Info(msg string, obj any)  { l.z.Info(msg, l.fields(obj)...) }
func (l zapLogger) Warn(msg string, obj any)  { l.z.Warn(msg, l.fields(obj)...) }
func (l zapLogger) Debug(msg string, obj any) { l.z.Debug(msg, l.fields(obj)...) }
func (l zapLogger) Error(msg string, obj any) { l.z.Error(msg, l.fields(obj)...) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf formats msg and writes it like Debug.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
