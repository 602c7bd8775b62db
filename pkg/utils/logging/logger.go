package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	dir          string
	console      io.Writer
	consoleLevel zapcore.Level
	now          func() time.Time
}

// Option customises InitLogger
type Option func(*options)

// WithDir sets the directory log files are written to (default "logs")
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithConsole replaces stdout as the console output
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithVerbose lowers the console level to debug
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		if verbose {
			o.consoleLevel = zapcore.DebugLevel
		}
	}
}

// LogFileName returns the log file path for an environment at a point in time
func LogFileName(dir, env string, at time.Time) string {
	if env == "" {
		env = "ridepass"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, at.Format("2006-01-02_15-04-05")))
}

// InitLogger initializes a zap logger with console and file outputs
// env is used to prefix the log file name. It returns the logger and the log file path.
func InitLogger(env string, opts ...Option) (*zap.Logger, string, error) {
	o := options{
		dir:          "logs",
		console:      os.Stdout,
		consoleLevel: zapcore.InfoLevel,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFileName := LogFileName(o.dir, env, o.now())
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	// Console: coloured and human-readable
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// File: JSON, everything from debug up
	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(o.console), o.consoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("env", env))

	return logger, logFileName, nil
}
