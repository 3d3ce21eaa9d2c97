package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"toolgate/internal/domain"
	"toolgate/internal/infra/httpapi"
	"toolgate/internal/infra/registry"
	"toolgate/internal/infra/telemetry"
)

// Application wires the gateway runtime and its dependencies.
type Application struct {
	ctx        context.Context
	configPath string
	config     domain.GatewayConfig

	logger   *zap.Logger
	metrics  *prometheus.Registry
	health   *telemetry.HealthTracker
	registry *registry.Registry
	api      *httpapi.Server
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Context     context.Context
	ServeConfig ServeConfig
	Config      domain.GatewayConfig
	Logger      *zap.Logger
	Metrics     *prometheus.Registry
	Health      *telemetry.HealthTracker
	Registry    *registry.Registry
	API         *httpapi.Server
}

// NewApplication constructs the gateway runtime.
func NewApplication(opts ApplicationOptions) *Application {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Application{
		ctx:        ctx,
		configPath: opts.ServeConfig.ConfigPath,
		config:     opts.Config,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		health:     opts.Health,
		registry:   opts.Registry,
		api:        opts.API,
	}
}

// Run starts the registry and both HTTP servers, blocking until the context
// is canceled or a server fails.
func (a *Application) Run() error {
	a.logger.Info("configuration loaded",
		zap.String("config", a.configPath),
		zap.Bool("remote_enabled", a.config.RemoteServices.Enabled),
		zap.Int("services", len(a.config.RemoteServices.EnabledServices())),
		zap.Bool("local_tools", a.config.IncludeLocalTools),
	)

	a.registry.Start(a.ctx)
	defer a.registry.Stop()

	info := a.registry.Snapshot()
	a.logger.Info("tool registry ready",
		telemetry.RevisionField(info.Revision),
		telemetry.ToolCountField(info.Tools),
	)

	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error {
		obs := a.config.Observability
		return telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
			Addr:          obs.ListenAddress,
			EnableMetrics: obs.MetricsEnabled,
			EnableHealthz: obs.HealthzEnabled,
			Health:        a.health,
			Registry:      a.metrics,
		}, a.logger)
	})
	g.Go(func() error {
		return a.api.Run(ctx)
	})
	return g.Wait()
}
