// Package logger holds the process-wide zap logger used for diagnostics.
// User-facing output is written directly by the commands; this logger only
// carries debug tracing, warnings and errors to stderr.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zap.WarnLevel)
)

// Init (re)builds the global logger writing to w at the given level.
// Valid levels: debug, info, warn, error. Unknown levels fall back to warn.
func Init(lvl string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(lvl)); err != nil {
		zapLevel = zap.WarnLevel
	}
	level.SetLevel(zapLevel)

	if w == nil {
		w = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        zapcore.OmitKey,
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	logger = zap.New(core)
	sugar = logger.Sugar()
}

// Sugar returns the global sugared logger, initializing it on first use.
func Sugar() *zap.SugaredLogger {
	mu.Lock()
	s := sugar
	mu.Unlock()
	if s == nil {
		Init(level.String(), os.Stderr)
		mu.Lock()
		s = sugar
		mu.Unlock()
	}
	return s
}

// Sync flushes any buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	Sugar().Debugf(template, args...)
}

func Warnf(template string, args ...interface{}) {
	Sugar().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	Sugar().Errorf(template, args...)
}
