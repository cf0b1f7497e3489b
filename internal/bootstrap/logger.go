package bootstrap

import (
	"fmt"

	"ui-harness/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the root zap logger. Debug mode switches to the console
// encoder; LOG_LEVEL controls verbosity either way.
func newLogger(conf *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if conf.AppConfig.Debug {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.DisableStacktrace = true

	level, err := zapcore.ParseLevel(conf.AppConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", conf.AppConfig.LogLevel, err)
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
