package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"toolgate/internal/domain"
	"toolgate/internal/infra/localtools"
	"toolgate/internal/infra/namespace"
	"toolgate/internal/infra/remote"
	"toolgate/internal/infra/telemetry"
)

type fakeResolver map[string]domain.ToolDescriptor

func (f fakeResolver) Lookup(name string) (domain.ToolDescriptor, bool) {
	tool, ok := f[name]
	return tool, ok
}

type recordingMetrics struct {
	mu      sync.Mutex
	execute []domain.ExecuteMetric
}

func (m *recordingMetrics) ObserveRefresh(time.Duration, domain.OutcomeStatus) {}

func (m *recordingMetrics) ObserveCatalogFetch(string, time.Duration, error) {}

func (m *recordingMetrics) SetRegistryTools(int) {}

func (m *recordingMetrics) ObserveExecute(metric domain.ExecuteMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execute = append(m.execute, metric)
}

type capturedRequest struct {
	path   string
	params map[string]any
}

var fixedNow = time.UnixMilli(1_760_000_000_123)

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, chan capturedRequest) {
	t.Helper()
	captured := make(chan capturedRequest, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &params)
		captured <- capturedRequest{path: r.URL.Path, params: params}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func newTestRouter(t *testing.T, svc domain.ServiceDescriptor, metrics domain.Metrics, timeout time.Duration) *Router {
	t.Helper()
	resolver := fakeResolver{}
	for _, raw := range []domain.RawTool{{Name: "get_forecast"}, {Name: "get_alerts"}} {
		tool := namespace.Qualify(svc.ID, raw)
		resolver[tool.Name] = tool
	}
	local := localtools.NewProvider(zap.NewNop())
	for _, tool := range local.ListTools() {
		resolver[tool.Name] = tool
	}
	client := remote.NewClient(nil, domain.ResilienceConfig{RetryMaxAttempts: 1, RetryInitialDelayMs: 1, BreakerThreshold: 50, BreakerTimeoutMs: 60000}, zap.NewNop())
	remoteCfg := domain.RemoteServicesConfig{Enabled: true, Services: []domain.ServiceDescriptor{svc}}
	return NewRouter(resolver, local, client, remoteCfg, RouterOptions{
		Timeout: timeout,
		Logger:  zap.NewNop(),
		Metrics: metrics,
		Now:     func() time.Time { return fixedNow },
	})
}

func weatherService(baseURL, template string) domain.ServiceDescriptor {
	return domain.ServiceDescriptor{
		ID:                    "weather",
		BaseURL:               baseURL,
		CatalogPath:           "/tools",
		ExecutionPathTemplate: template,
		Enabled:               true,
	}
}

func TestRouter_RemoteTemplateUsesOriginalName(t *testing.T) {
	server, captured := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"temperature":4}`)
	})
	r := newTestRouter(t, weatherService(server.URL, "/tools/{tool}/run"), nil, time.Second)

	body, err := r.Execute(context.Background(), "weather.get_forecast", map[string]any{"city": "Oslo"})
	require.NoError(t, err)
	require.Equal(t, `{"temperature":4}`, string(body))

	req := <-captured
	require.Equal(t, "/tools/get_forecast/run", req.path)
	require.Equal(t, map[string]any{"city": "Oslo"}, req.params)
}

func TestRouter_FixedPathDoesNotInjectName(t *testing.T) {
	server, captured := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
	r := newTestRouter(t, weatherService(server.URL, "/execute"), nil, time.Second)

	_, err := r.Execute(context.Background(), "weather.get_alerts", map[string]any{"region": "north"})
	require.NoError(t, err)

	req := <-captured
	require.Equal(t, "/execute", req.path)
	require.Equal(t, map[string]any{"region": "north"}, req.params)
}

func TestRouter_NilParamsPostEmptyObject(t *testing.T) {
	server, captured := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r := newTestRouter(t, weatherService(server.URL, "/tools/{tool}"), nil, time.Second)

	body, err := r.Execute(context.Background(), "weather.get_forecast", nil)
	require.NoError(t, err)
	require.Equal(t, "null", string(body))
	require.Equal(t, map[string]any{}, (<-captured).params)
}

func TestRouter_TimeoutReturnsFailurePayload(t *testing.T) {
	release := make(chan struct{})
	server, _ := newBackend(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	metrics := &recordingMetrics{}
	r := newTestRouter(t, weatherService(server.URL, "/tools/{tool}"), metrics, 50*time.Millisecond)

	body, err := r.Execute(context.Background(), "weather.get_forecast", map[string]any{})
	require.NoError(t, err)

	var payload FailurePayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, FailureStatus, payload.Status)
	require.NotEmpty(t, payload.Error)
	require.Equal(t, fixedNow.UnixMilli(), payload.Timestamp)

	require.Len(t, metrics.execute, 1)
	require.Equal(t, domain.OriginRemote, metrics.execute[0].Origin)
	require.Equal(t, domain.OutcomeError, metrics.execute[0].Status)
}

func TestRouter_BackendErrorReturnsFailurePayload(t *testing.T) {
	server, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "exploded", http.StatusInternalServerError)
	})
	r := newTestRouter(t, weatherService(server.URL, "/tools/{tool}"), nil, time.Second)

	body, err := r.Execute(context.Background(), "weather.get_forecast", nil)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "FAILED", payload["status"])
	require.Contains(t, payload["error"], "status 500")
	require.Equal(t, float64(fixedNow.UnixMilli()), payload["timestamp"])
}

func TestRouter_FailureLogCarriesOriginalName(t *testing.T) {
	server, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "exploded", http.StatusInternalServerError)
	})
	r := newTestRouter(t, weatherService(server.URL, "/tools/{tool}"), nil, time.Second)
	core, logs := observer.New(zapcore.WarnLevel)
	r.logger = zap.New(core)

	_, err := r.Execute(context.Background(), "weather.get_forecast", nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("remote execution failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "weather.get_forecast", fields[telemetry.FieldTool])
	require.Equal(t, "get_forecast", fields[telemetry.FieldOriginalName])
	require.Equal(t, "weather", fields[telemetry.FieldServiceID])
}

func TestRouter_UnknownServiceReturnsFailurePayload(t *testing.T) {
	r := newTestRouter(t, weatherService("http://unused.test", "/x"), nil, time.Second)
	r.tools = fakeResolver{"ghost.tool": namespace.Qualify("ghost", domain.RawTool{Name: "tool"})}

	body, err := r.Execute(context.Background(), "ghost.tool", nil)
	require.NoError(t, err)
	require.Contains(t, string(body), `"status":"FAILED"`)
	require.Contains(t, string(body), "service not found")
}

func TestRouter_UnknownTool(t *testing.T) {
	metrics := &recordingMetrics{}
	r := newTestRouter(t, weatherService("http://unused.test", "/x"), metrics, time.Second)

	_, err := r.Execute(context.Background(), "weather.nope", nil)
	require.ErrorIs(t, err, domain.ErrToolNotFound)
	require.Equal(t, domain.OutcomeNotFound, metrics.execute[0].Status)

	// unqualified backend names are not registry keys
	_, err = r.Execute(context.Background(), "get_forecast", nil)
	require.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestRouter_LocalCalculator(t *testing.T) {
	metrics := &recordingMetrics{}
	r := newTestRouter(t, weatherService("http://unused.test", "/x"), metrics, time.Second)

	body, err := r.Execute(context.Background(), "calculator", map[string]any{"operation": "add", "a": 2, "b": 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"operation":"add","result":5}`, string(body))
	require.Equal(t, domain.OriginLocal, metrics.execute[0].Origin)
	require.Equal(t, domain.OutcomeSuccess, metrics.execute[0].Status)
}

func TestRouter_LocalErrorsPropagate(t *testing.T) {
	r := newTestRouter(t, weatherService("http://unused.test", "/x"), nil, time.Second)

	_, err := r.Execute(context.Background(), "calculator", map[string]any{"operation": "divide", "a": 1, "b": 0})
	require.ErrorIs(t, err, domain.ErrInvalidParams)
}
