package domain

const (
	DefaultListenAddress              = "0.0.0.0:8080"
	DefaultIncludeLocalTools          = true
	DefaultLogLevel                   = "info"
	DefaultRemoteServicesEnabled      = false
	DefaultRefreshIntervalMs          = 300000
	DefaultFetchTimeoutMs             = 10000
	DefaultExecuteTimeoutMs           = 30000
	DefaultRefreshConcurrency         = 4
	DefaultServiceEnabled             = true
	DefaultRetryMaxAttempts           = 3
	DefaultRetryInitialDelayMs        = 100
	DefaultBreakerThreshold           = 5
	DefaultBreakerTimeoutMs           = 30000
	DefaultObservabilityListenAddress = "0.0.0.0:9090"
	DefaultMetricsEnabled             = true
	DefaultHealthzEnabled             = true
	DefaultSearchLimit                = 20
)
