package app

import (
	"context"

	"go.uber.org/zap"
)

type App struct {
	logger *zap.Logger
	level  *zap.AtomicLevel
}

type ServeConfig struct {
	ConfigPath string
	// LogLevel overrides the configured log level when set.
	LogLevel string
}

type ValidateConfig struct {
	ConfigPath string
}

// New returns an App using logger. When level is non-nil it is adjusted to
// the configured log level once the configuration is loaded.
func New(logger *zap.Logger, level *zap.AtomicLevel) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger: logger,
		level:  level,
	}
}

// Serve loads the configuration, wires the gateway and runs it until ctx is
// canceled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	application, err := InitializeApplication(ctx, cfg, LoggingConfig{
		Logger:        a.logger,
		Level:         a.level,
		LevelOverride: cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	return application.Run()
}
