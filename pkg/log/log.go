package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var atom = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		atom,
	))

	zap.ReplaceGlobals(logger)
}

// Debug logs a debug message with optional key-value
// pairs. Refer to https://godoc.org/go.uber.org/zap
// for more details.
func Debug(msg string, args ...interface{}) {
	zap.S().Debugw(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...interface{}) {
	zap.S().Infow(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...interface{}) {
	zap.S().Warnw(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...interface{}) {
	zap.S().Errorw(msg, args...)
}

// Panic logs a message with optional key-value pairs, then panics.
func Panic(msg string, args ...interface{}) {
	zap.S().Panicw(msg, args...)
}

// Fatal logs a message with optional key-value pairs,
// then calls os.Exit(1).
func Fatal(msg string, args ...interface{}) {
	zap.S().Fatalw(msg, args...)
}

// SetLevel sets the log level by string, which can be any
// of ["debug", "info", "warn", "error", "panic", "fatal"],
// case-insensitive.
func SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	atom.SetLevel(parsed)
	return nil
}

// GetLevel returns the current log level.
func GetLevel() zapcore.Level {
	return atom.Level()
}
