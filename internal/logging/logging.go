// Package logging builds the zap logger shared by the commands.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	Level       string
	Development bool
	// OutputPaths overrides where entries are written. Defaults to stderr.
	OutputPaths []string
}

// Logger pairs a zap logger with the atomic level it was built with, so the
// level can be changed at runtime.
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel
}

// New builds a production (JSON) or development (console) logger.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level.SetLevel(parsed)
	}

	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = level
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		config.OutputPaths = append([]string(nil), opts.OutputPaths...)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return &Logger{Logger: logger, Level: level}, nil
}

// Sync flushes buffered entries, ignoring the errors stderr returns on
// some platforms.
func (l *Logger) Sync() {
	if l == nil || l.Logger == nil {
		return
	}
	_ = l.Logger.Sync()
}
