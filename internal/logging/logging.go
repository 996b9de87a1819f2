// Package logging builds the process-wide zap logger.
package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger. format "json" selects the production encoder and
// "console" the development one; empty picks by environment.
func New(format, appEnv string) (*zap.Logger, error) {
	if format == "" {
		format = "console"
		if strings.EqualFold(appEnv, "production") {
			format = "json"
		}
	}

	var config zap.Config
	switch strings.ToLower(format) {
	case "json":
		config = zap.NewProductionConfig()
	case "console":
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	return logger, nil
}

// Setup builds a logger and installs it as the zap global. The returned
// function flushes buffered entries.
func Setup(format, appEnv string) (func(), error) {
	logger, err := New(format, appEnv)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return func() { _ = logger.Sync() }, nil
}
