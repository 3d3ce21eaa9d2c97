package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolgate/internal/domain"
)

func TestLoader_Defaults(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
includeLocalTools: true
	`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)

	expect := domain.GatewayConfig{
		ListenAddress:     domain.DefaultListenAddress,
		IncludeLocalTools: true,
		LogLevel:          domain.DefaultLogLevel,
		RemoteServices: domain.RemoteServicesConfig{
			Enabled:            domain.DefaultRemoteServicesEnabled,
			RefreshIntervalMs:  domain.DefaultRefreshIntervalMs,
			FetchTimeoutMs:     domain.DefaultFetchTimeoutMs,
			ExecuteTimeoutMs:   domain.DefaultExecuteTimeoutMs,
			RefreshConcurrency: domain.DefaultRefreshConcurrency,
			Services:           []domain.ServiceDescriptor{},
		},
		Resilience: domain.ResilienceConfig{
			RetryMaxAttempts:    domain.DefaultRetryMaxAttempts,
			RetryInitialDelayMs: domain.DefaultRetryInitialDelayMs,
			BreakerThreshold:    domain.DefaultBreakerThreshold,
			BreakerTimeoutMs:    domain.DefaultBreakerTimeoutMs,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress:  domain.DefaultObservabilityListenAddress,
			MetricsEnabled: domain.DefaultMetricsEnabled,
			HealthzEnabled: domain.DefaultHealthzEnabled,
		},
	}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Services(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  enabled: true
  refreshIntervalMs: 60000
  services:
    - id: weather
      url: http://localhost:9001
      toolsEndpoint: /tools
      executionEndpoint: /tools/{tool}/run
    - id: billing
      url: https://billing.internal
      toolsEndpoint: /catalog
      executionEndpoint: /invoke
      enabled: false
	`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.True(t, cfg.RemoteServices.Enabled)
	require.Equal(t, 60000, cfg.RemoteServices.RefreshIntervalMs)

	expect := []domain.ServiceDescriptor{
		{
			ID:                    "weather",
			BaseURL:               "http://localhost:9001",
			CatalogPath:           "/tools",
			ExecutionPathTemplate: "/tools/{tool}/run",
			Enabled:               true,
		},
		{
			ID:                    "billing",
			BaseURL:               "https://billing.internal",
			CatalogPath:           "/catalog",
			ExecutionPathTemplate: "/invoke",
			Enabled:               false,
		},
	}
	if diff := cmp.Diff(expect, cfg.RemoteServices.Services); diff != "" {
		t.Fatalf("services mismatch (-want +got):\n%s", diff)
	}

	enabled := cfg.RemoteServices.EnabledServices()
	require.Len(t, enabled, 1)
	require.Equal(t, "weather", enabled[0].ID)
}

func TestLoader_EnvExpansion(t *testing.T) {
	t.Setenv("TOOLGATE_TEST_WEATHER_URL", "http://weather.test:8081")
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  services:
    - id: weather
      url: ${TOOLGATE_TEST_WEATHER_URL}
      toolsEndpoint: /tools
      executionEndpoint: /run
	`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, "http://weather.test:8081", cfg.RemoteServices.Services[0].BaseURL)
}

func TestLoader_EnvExpansionNumeric(t *testing.T) {
	t.Setenv("TOOLGATE_TEST_FETCH_TIMEOUT", "2500")
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  fetchTimeoutMs: ${TOOLGATE_TEST_FETCH_TIMEOUT}
	`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, 2500, cfg.RemoteServices.FetchTimeoutMs)
}

func TestLoader_TOML(t *testing.T) {
	file := writeTempConfig(t, "catalog.toml", `
listenAddress = "127.0.0.1:8088"

[remoteServices]
enabled = true

[[remoteServices.services]]
id = "search"
url = "http://localhost:9002"
toolsEndpoint = "/tools"
executionEndpoint = "/tools/{tool}"
`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8088", cfg.ListenAddress)
	require.True(t, cfg.RemoteServices.Enabled)
	require.Len(t, cfg.RemoteServices.Services, 1)
	require.Equal(t, "search", cfg.RemoteServices.Services[0].ID)
	require.True(t, cfg.RemoteServices.Services[0].Enabled)
}

func TestLoader_DuplicateServiceID(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  services:
    - id: weather
      url: http://localhost:9001
    - id: weather
      url: http://localhost:9002
	`)

	_, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidConfig))
	require.Contains(t, err.Error(), `duplicate id "weather"`)
}

func TestLoader_CollectsAllErrors(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  fetchTimeoutMs: 0
  refreshConcurrency: -1
  services:
    - id: ""
      url: http://localhost:9001
    - id: wea.ther
      url: ftp://localhost
    - id: ok
      url: ""
	`)

	_, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInvalidArgument, code)

	msg := err.Error()
	require.Contains(t, msg, "remoteServices.fetchTimeoutMs must be > 0")
	require.Contains(t, msg, "remoteServices.refreshConcurrency must be > 0")
	require.Contains(t, msg, "services[0]: id is required")
	require.Contains(t, msg, `services[1]: id "wea.ther" must not contain "."`)
	require.Contains(t, msg, "scheme must be http or https")
	require.Contains(t, msg, "services[2]: url is required")
}

func TestLoader_RequiresEndpoints(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
remoteServices:
  services:
    - id: weather
      url: http://localhost:9001
      executionEndpoint: /run
    - id: billing
      url: http://localhost:9002
      toolsEndpoint: "  "
`)

	_, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	msg := err.Error()
	require.Contains(t, msg, "services[0]: toolsEndpoint is required")
	require.NotContains(t, msg, "services[0]: executionEndpoint is required")
	require.Contains(t, msg, "services[1]: toolsEndpoint is required")
	require.Contains(t, msg, "services[1]: executionEndpoint is required")
}

func TestLoader_InvalidLogLevel(t *testing.T) {
	file := writeTempConfig(t, "catalog.yaml", `
logLevel: verbose
	`)

	_, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.Error(t, err)
	require.Contains(t, err.Error(), "logLevel must be one of")
}

func TestLoader_MissingPath(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestExpandConfigEnv_TracksMissing(t *testing.T) {
	expanded, missing, err := expandConfigEnv([]byte("a: ${TOOLGATE_TEST_UNSET_B}\nb: \"${TOOLGATE_TEST_UNSET_A}\"\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"TOOLGATE_TEST_UNSET_A", "TOOLGATE_TEST_UNSET_B"}, missing)
	require.NotContains(t, expanded, "$")
}

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	normalized := strings.ReplaceAll(content, "\t", "  ")
	if err := os.WriteFile(path, []byte(normalized), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
