package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"toolgate/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func newGatewayViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setGatewayDefaults(v)
	return v
}

func setGatewayDefaults(v *viper.Viper) {
	v.SetDefault("listenAddress", domain.DefaultListenAddress)
	v.SetDefault("includeLocalTools", domain.DefaultIncludeLocalTools)
	v.SetDefault("logLevel", domain.DefaultLogLevel)
	v.SetDefault("remoteServices.enabled", domain.DefaultRemoteServicesEnabled)
	v.SetDefault("remoteServices.refreshIntervalMs", domain.DefaultRefreshIntervalMs)
	v.SetDefault("remoteServices.fetchTimeoutMs", domain.DefaultFetchTimeoutMs)
	v.SetDefault("remoteServices.executeTimeoutMs", domain.DefaultExecuteTimeoutMs)
	v.SetDefault("remoteServices.refreshConcurrency", domain.DefaultRefreshConcurrency)
	v.SetDefault("resilience.retryMaxAttempts", domain.DefaultRetryMaxAttempts)
	v.SetDefault("resilience.retryInitialDelayMs", domain.DefaultRetryInitialDelayMs)
	v.SetDefault("resilience.breakerThreshold", domain.DefaultBreakerThreshold)
	v.SetDefault("resilience.breakerTimeoutMs", domain.DefaultBreakerTimeoutMs)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.metricsEnabled", domain.DefaultMetricsEnabled)
	v.SetDefault("observability.healthzEnabled", domain.DefaultHealthzEnabled)
}

type rawGatewayConfig struct {
	ListenAddress     string                  `mapstructure:"listenAddress"`
	IncludeLocalTools bool                    `mapstructure:"includeLocalTools"`
	LogLevel          string                  `mapstructure:"logLevel"`
	RemoteServices    rawRemoteServicesConfig `mapstructure:"remoteServices"`
	Resilience        rawResilienceConfig     `mapstructure:"resilience"`
	Observability     rawObservabilityConfig  `mapstructure:"observability"`
}

type rawRemoteServicesConfig struct {
	Enabled            bool               `mapstructure:"enabled"`
	RefreshIntervalMs  int                `mapstructure:"refreshIntervalMs"`
	FetchTimeoutMs     int                `mapstructure:"fetchTimeoutMs"`
	ExecuteTimeoutMs   int                `mapstructure:"executeTimeoutMs"`
	RefreshConcurrency int                `mapstructure:"refreshConcurrency"`
	Services           []rawServiceConfig `mapstructure:"services"`
}

type rawServiceConfig struct {
	ID                string `mapstructure:"id"`
	URL               string `mapstructure:"url"`
	ToolsEndpoint     string `mapstructure:"toolsEndpoint"`
	ExecutionEndpoint string `mapstructure:"executionEndpoint"`
	Enabled           *bool  `mapstructure:"enabled"`
}

type rawResilienceConfig struct {
	RetryMaxAttempts    int `mapstructure:"retryMaxAttempts"`
	RetryInitialDelayMs int `mapstructure:"retryInitialDelayMs"`
	BreakerThreshold    int `mapstructure:"breakerThreshold"`
	BreakerTimeoutMs    int `mapstructure:"breakerTimeoutMs"`
}

type rawObservabilityConfig struct {
	ListenAddress  string `mapstructure:"listenAddress"`
	MetricsEnabled bool   `mapstructure:"metricsEnabled"`
	HealthzEnabled bool   `mapstructure:"healthzEnabled"`
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

// Load reads, expands, decodes and validates the gateway configuration.
// Every validation problem is reported in a single error.
func (l *Loader) Load(ctx context.Context, path string) (domain.GatewayConfig, error) {
	if path == "" {
		return domain.GatewayConfig{}, domain.E(domain.CodeInvalidArgument, "catalog.Load", "config path is required", domain.ErrInvalidConfig)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GatewayConfig{}, fmt.Errorf("read config: %w", err)
	}

	if isTOML(path) {
		data, err = tomlToYAML(data)
		if err != nil {
			return domain.GatewayConfig{}, err
		}
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.GatewayConfig{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newGatewayViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.GatewayConfig{}, fmt.Errorf("parse config: %w", err)
	}

	var raw rawGatewayConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.GatewayConfig{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.GatewayConfig{}, err
	}

	cfg := normalizeGatewayConfig(raw)
	if errs := validateGatewayConfig(cfg); len(errs) > 0 {
		return domain.GatewayConfig{}, domain.E(domain.CodeInvalidArgument, "catalog.Load", strings.Join(errs, "; "), domain.ErrInvalidConfig)
	}

	for _, svc := range cfg.RemoteServices.Services {
		if !svc.Enabled {
			l.logger.Info("remote service disabled", zap.String("service_id", svc.ID))
		}
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// tomlToYAML re-encodes a TOML document so the rest of the pipeline only
// deals with YAML nodes.
func tomlToYAML(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode toml config: %w", err)
	}
	return out, nil
}

func normalizeGatewayConfig(raw rawGatewayConfig) domain.GatewayConfig {
	services := make([]domain.ServiceDescriptor, 0, len(raw.RemoteServices.Services))
	for _, svc := range raw.RemoteServices.Services {
		services = append(services, normalizeService(svc))
	}

	return domain.GatewayConfig{
		ListenAddress:     strings.TrimSpace(raw.ListenAddress),
		IncludeLocalTools: raw.IncludeLocalTools,
		LogLevel:          strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		RemoteServices: domain.RemoteServicesConfig{
			Enabled:            raw.RemoteServices.Enabled,
			RefreshIntervalMs:  raw.RemoteServices.RefreshIntervalMs,
			FetchTimeoutMs:     raw.RemoteServices.FetchTimeoutMs,
			ExecuteTimeoutMs:   raw.RemoteServices.ExecuteTimeoutMs,
			RefreshConcurrency: raw.RemoteServices.RefreshConcurrency,
			Services:           services,
		},
		Resilience: domain.ResilienceConfig{
			RetryMaxAttempts:    raw.Resilience.RetryMaxAttempts,
			RetryInitialDelayMs: raw.Resilience.RetryInitialDelayMs,
			BreakerThreshold:    raw.Resilience.BreakerThreshold,
			BreakerTimeoutMs:    raw.Resilience.BreakerTimeoutMs,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress:  strings.TrimSpace(raw.Observability.ListenAddress),
			MetricsEnabled: raw.Observability.MetricsEnabled,
			HealthzEnabled: raw.Observability.HealthzEnabled,
		},
	}
}

func normalizeService(raw rawServiceConfig) domain.ServiceDescriptor {
	enabled := domain.DefaultServiceEnabled
	if raw.Enabled != nil {
		enabled = *raw.Enabled
	}
	return domain.ServiceDescriptor{
		ID:                    strings.TrimSpace(raw.ID),
		BaseURL:               strings.TrimSpace(raw.URL),
		CatalogPath:           strings.TrimSpace(raw.ToolsEndpoint),
		ExecutionPathTemplate: strings.TrimSpace(raw.ExecutionEndpoint),
		Enabled:               enabled,
	}
}

func validateGatewayConfig(cfg domain.GatewayConfig) []string {
	var errs []string

	if cfg.ListenAddress == "" {
		errs = append(errs, "listenAddress is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logLevel must be one of debug, info, warn, error (got %q)", cfg.LogLevel))
	}

	remote := cfg.RemoteServices
	errs = appendPositive(errs, "remoteServices.refreshIntervalMs", remote.RefreshIntervalMs)
	errs = appendPositive(errs, "remoteServices.fetchTimeoutMs", remote.FetchTimeoutMs)
	errs = appendPositive(errs, "remoteServices.executeTimeoutMs", remote.ExecuteTimeoutMs)
	errs = appendPositive(errs, "remoteServices.refreshConcurrency", remote.RefreshConcurrency)

	seen := make(map[string]struct{}, len(remote.Services))
	for i, svc := range remote.Services {
		errs = append(errs, validateService(svc, i)...)
		if svc.ID == "" {
			continue
		}
		if _, exists := seen[svc.ID]; exists {
			errs = append(errs, fmt.Sprintf("remoteServices.services[%d]: duplicate id %q", i, svc.ID))
			continue
		}
		seen[svc.ID] = struct{}{}
	}

	res := cfg.Resilience
	errs = appendPositive(errs, "resilience.retryMaxAttempts", res.RetryMaxAttempts)
	errs = appendPositive(errs, "resilience.breakerThreshold", res.BreakerThreshold)
	errs = appendPositive(errs, "resilience.breakerTimeoutMs", res.BreakerTimeoutMs)
	if res.RetryInitialDelayMs < 0 {
		errs = append(errs, "resilience.retryInitialDelayMs must be >= 0")
	}

	if (cfg.Observability.MetricsEnabled || cfg.Observability.HealthzEnabled) && cfg.Observability.ListenAddress == "" {
		errs = append(errs, "observability.listenAddress is required when metrics or healthz are enabled")
	}
	return errs
}

func validateService(svc domain.ServiceDescriptor, index int) []string {
	var errs []string
	prefix := fmt.Sprintf("remoteServices.services[%d]", index)

	if svc.ID == "" {
		errs = append(errs, prefix+": id is required")
	} else if strings.Contains(svc.ID, domain.NameSeparator) {
		errs = append(errs, fmt.Sprintf("%s: id %q must not contain %q", prefix, svc.ID, domain.NameSeparator))
	}

	if svc.BaseURL == "" {
		errs = append(errs, prefix+": url is required")
	} else if err := validateBaseURL(svc.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("%s: url %q is invalid: %v", prefix, svc.BaseURL, err))
	}

	if svc.CatalogPath == "" {
		errs = append(errs, prefix+": toolsEndpoint is required")
	}
	if svc.ExecutionPathTemplate == "" {
		errs = append(errs, prefix+": executionEndpoint is required")
	}
	return errs
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func appendPositive(errs []string, field string, value int) []string {
	if value <= 0 {
		return append(errs, fmt.Sprintf("%s must be > 0", field))
	}
	return errs
}
