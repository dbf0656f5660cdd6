package logger

import (
	"os"
	"strings"
	"sync"

	"smartstudy/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Initialize sets up the logger with the given configuration
func Initialize(loggerCfg config.LoggerConfig) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	logLevel := zapcore.InfoLevel
	if loggerCfg.Level != "" {
		if err := logLevel.Set(strings.ToLower(loggerCfg.Level)); err != nil {
			return err
		}
	}

	var encoder zapcore.Encoder
	if loggerCfg.Env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// stderr keeps stdout clean for CLI output
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), logLevel)

	mu.Lock()
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	mu.Unlock()
	return nil
}

// Get returns the global logger instance
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Set replaces the global logger, e.g. with zap.NewNop() in tests.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// Sync flushes any buffered log entries
func Sync() error {
	return Get().Sync()
}
