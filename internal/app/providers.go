package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/catalog"
	"toolgate/internal/infra/httpapi"
	"toolgate/internal/infra/localtools"
	"toolgate/internal/infra/registry"
	"toolgate/internal/infra/remote"
	"toolgate/internal/infra/router"
	"toolgate/internal/infra/telemetry"
)

// NewGatewayConfig loads and validates the configuration file. The bootstrap
// logger is used because the configured level is not known yet.
func NewGatewayConfig(ctx context.Context, cfg ServeConfig, logging LoggingConfig) (domain.GatewayConfig, error) {
	logger := logging.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return catalog.NewLoader(logger).Load(ctx, cfg.ConfigPath)
}

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewHealthTracker() *telemetry.HealthTracker {
	return telemetry.NewHealthTracker()
}

// NewHTTPClient returns the outbound client shared by every backend call.
// Per-request deadlines come from the fetch and execute timeouts.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	return &http.Client{Transport: transport}
}

func NewRemoteClient(httpClient *http.Client, cfg domain.GatewayConfig, logger *zap.Logger) *remote.Client {
	return remote.NewClient(httpClient, cfg.Resilience, logger)
}

func NewLocalProvider(logger *zap.Logger) *localtools.Provider {
	return localtools.NewProvider(logger)
}

func NewToolRegistry(
	cfg domain.GatewayConfig,
	local *localtools.Provider,
	client *remote.Client,
	metrics domain.Metrics,
	health *telemetry.HealthTracker,
	logger *zap.Logger,
) *registry.Registry {
	return registry.NewRegistry(cfg, local, client, metrics, health, logger)
}

func NewRouter(
	cfg domain.GatewayConfig,
	tools *registry.Registry,
	local *localtools.Provider,
	client *remote.Client,
	metrics domain.Metrics,
	logger *zap.Logger,
) *router.Router {
	return router.NewRouter(tools, local, client, cfg.RemoteServices, router.RouterOptions{
		Timeout: cfg.RemoteServices.ExecuteTimeout(),
		Logger:  logger,
		Metrics: metrics,
	})
}

func NewAPIServer(
	cfg domain.GatewayConfig,
	tools *registry.Registry,
	rt *router.Router,
	client *remote.Client,
	logger *zap.Logger,
) *httpapi.Server {
	return httpapi.NewServer(httpapi.Options{
		Addr:     cfg.ListenAddress,
		Remote:   cfg.RemoteServices,
		Catalog:  tools,
		Executor: rt,
		Breakers: client,
		Logger:   logger,
	})
}
