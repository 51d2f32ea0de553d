package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a sugared zap logger. Daemon events are logged with the
// key/value methods (Infow, Warnw, Errorw) and always carry an "event" field.
type Logger struct {
	*zap.SugaredLogger
}

type Options struct {
	Level   string
	File    string
	AppName string

	// Rotation of File, in megabytes / files / days.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (o *Options) setDefaults() {
	if o.MaxSizeMB == 0 {
		o.MaxSizeMB = 100
	}
	if o.MaxBackups == 0 {
		o.MaxBackups = 3
	}
	if o.MaxAgeDays == 0 {
		o.MaxAgeDays = 28
	}
}

func New(opts Options) (*Logger, error) {
	opts.setDefaults()

	if opts.File != "" {
		logDir := filepath.Dir(opts.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)

	core := consoleCore
	if opts.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
		core = zapcore.NewTee(
			consoleCore,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level),
		)
	}

	zapOpts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.AppName != "" {
		zapOpts = append(zapOpts, zap.Fields(zap.String("app", opts.AppName)))
	}

	return &Logger{zap.New(core, zapOpts...).Sugar()}, nil
}

// NewWithCore is used by tests that observe log output.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zap.New(core).Sugar()}
}

func (l *Logger) Close() {
	_ = l.Sync()
}
