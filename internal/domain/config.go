package domain

// GatewayConfig is the fully normalized configuration. It is loaded once and
// never mutated afterwards.
type GatewayConfig struct {
	ListenAddress     string               `json:"listenAddress"`
	IncludeLocalTools bool                 `json:"includeLocalTools"`
	LogLevel          string               `json:"logLevel"`
	RemoteServices    RemoteServicesConfig `json:"remoteServices"`
	Resilience        ResilienceConfig     `json:"resilience"`
	Observability     ObservabilityConfig  `json:"observability"`
}

type RemoteServicesConfig struct {
	Enabled            bool                `json:"enabled"`
	RefreshIntervalMs  int                 `json:"refreshIntervalMs"`
	FetchTimeoutMs     int                 `json:"fetchTimeoutMs"`
	ExecuteTimeoutMs   int                 `json:"executeTimeoutMs"`
	RefreshConcurrency int                 `json:"refreshConcurrency"`
	Services           []ServiceDescriptor `json:"services"`
}

type ResilienceConfig struct {
	RetryMaxAttempts    int `json:"retryMaxAttempts"`
	RetryInitialDelayMs int `json:"retryInitialDelayMs"`
	BreakerThreshold    int `json:"breakerThreshold"`
	BreakerTimeoutMs    int `json:"breakerTimeoutMs"`
}

type ObservabilityConfig struct {
	ListenAddress  string `json:"listenAddress"`
	MetricsEnabled bool   `json:"metricsEnabled"`
	HealthzEnabled bool   `json:"healthzEnabled"`
}

// EnabledServices returns the enabled services in configuration order.
func (c RemoteServicesConfig) EnabledServices() []ServiceDescriptor {
	out := make([]ServiceDescriptor, 0, len(c.Services))
	for _, svc := range c.Services {
		if svc.Enabled {
			out = append(out, svc)
		}
	}
	return out
}

// Service returns the descriptor with the given id.
func (c RemoteServicesConfig) Service(id string) (ServiceDescriptor, bool) {
	for _, svc := range c.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return ServiceDescriptor{}, false
}
