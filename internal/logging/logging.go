// Package logging builds the application logger: a human-readable console
// core and, optionally, a JSON file core in the log directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file created in the log directory.
const FileName = "nebula.log"

// Options configures New.
type Options struct {
	Level   string    // debug, info, warn or error; empty means info
	Verbose bool      // forces debug
	Quiet   bool      // forces error; Verbose wins when both are set
	Console io.Writer // default os.Stderr; stdout is kept for command output
	Dir     string    // log directory, required when File is set
	File    bool
}

// ResolveLevel applies the --verbose and --quiet overrides to the
// configured level.
func ResolveLevel(level string, verbose, quiet bool) (zapcore.Level, error) {
	switch {
	case verbose:
		return zapcore.DebugLevel, nil
	case quiet:
		return zapcore.ErrorLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New returns the logger and a function that flushes and closes the log
// file. A log file that cannot be opened is reported but the console
// logger is still returned.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := ResolveLevel(opts.Level, opts.Verbose, opts.Quiet)
	if err != nil {
		return nil, nil, err
	}
	atom := zap.NewAtomicLevelAt(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(console), atom),
	}

	closeFile := func() error { return nil }
	var fileErr error
	if opts.File {
		f, err := openLogFile(opts.Dir)
		if err != nil {
			fileErr = err
		} else {
			// The file always records at least info so post-mortems have
			// the update phases even under --quiet.
			fileLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.InfoLevel || atom.Enabled(l)
			})
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(f), fileLevel))
			closeFile = f.Close
		}
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
	closer := func() error {
		_ = logger.Sync()
		return closeFile()
	}
	return logger, closer, fileErr
}

func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	return cfg
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
