package app

import (
	"context"

	"go.uber.org/zap"

	"toolgate/internal/infra/catalog"
)

// ValidateConfig validates the configuration at the provided path.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	loader := catalog.NewLoader(a.logger)
	gateway, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if _, err := ParseLevel(gateway.LogLevel); err != nil {
		return err
	}

	a.logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.Bool("remote_enabled", gateway.RemoteServices.Enabled),
		zap.Int("services", len(gateway.RemoteServices.Services)),
		zap.Int("enabled_services", len(gateway.RemoteServices.EnabledServices())),
	)
	return nil
}
