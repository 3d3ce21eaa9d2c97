package router

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/namespace"
	"toolgate/internal/infra/remote"
	"toolgate/internal/infra/telemetry"
)

// FailureStatus marks a synthesized failure payload.
const FailureStatus = "FAILED"

// FailurePayload is returned in place of a backend response when a remote
// execution fails. Remote failures are data, not errors.
type FailurePayload struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

type Router struct {
	tools    domain.ToolResolver
	local    domain.LocalProvider
	invoker  domain.Invoker
	remote   domain.RemoteServicesConfig
	timeout  time.Duration
	logger   *zap.Logger
	metrics  domain.Metrics
	now      func() time.Time
}

type RouterOptions struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics domain.Metrics
	Now     func() time.Time
}

func NewRouter(tools domain.ToolResolver, local domain.LocalProvider, invoker domain.Invoker, remote domain.RemoteServicesConfig, opts RouterOptions) *Router {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultExecuteTimeoutMs) * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Router{
		tools:    tools,
		local:    local,
		invoker:  invoker,
		remote:   remote,
		timeout:  timeout,
		logger:   logger.Named("router"),
		metrics:  metrics,
		now:      now,
	}
}

// Execute runs the named tool. Unknown tools and local failures are returned
// as errors; remote failures come back as a FailurePayload.
func (r *Router) Execute(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	start := time.Now()

	tool, ok := r.tools.Lookup(name)
	if !ok {
		r.observe(domain.ExecuteMetric{Origin: domain.OriginLocal, Status: domain.OutcomeNotFound, Duration: time.Since(start)})
		telemetry.LoggerWithRequest(ctx, r.logger).Debug("tool not found",
			telemetry.EventField(telemetry.EventExecuteNotFound),
			telemetry.ToolField(name),
		)
		return nil, domain.E(domain.CodeNotFound, "router.Execute", fmt.Sprintf("tool %q not found", name), domain.ErrToolNotFound)
	}

	if serviceID, originalName, isRemote := namespace.Provenance(tool); isRemote {
		return r.executeRemote(ctx, tool.Name, serviceID, originalName, params, start), nil
	}
	return r.executeLocal(ctx, tool.Name, params, start)
}

func (r *Router) executeLocal(ctx context.Context, name string, params map[string]any, start time.Time) (json.RawMessage, error) {
	metric := domain.ExecuteMetric{Origin: domain.OriginLocal, Status: domain.OutcomeError}
	defer func() {
		metric.Duration = time.Since(start)
		r.observe(metric)
	}()

	if r.local == nil {
		metric.Status = domain.OutcomeNotFound
		return nil, domain.E(domain.CodeNotFound, "router.Execute", fmt.Sprintf("tool %q not found", name), domain.ErrToolNotFound)
	}
	result, err := r.local.Execute(ctx, name, params)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "router.Execute", "encode local result", err)
	}
	metric.Status = domain.OutcomeSuccess
	return raw, nil
}

func (r *Router) executeRemote(ctx context.Context, name, serviceID, originalName string, params map[string]any, start time.Time) json.RawMessage {
	metric := domain.ExecuteMetric{Origin: domain.OriginRemote, ServiceID: serviceID, Status: domain.OutcomeError}
	defer func() {
		metric.Duration = time.Since(start)
		r.observe(metric)
	}()

	svc, ok := r.remote.Service(serviceID)
	if !ok {
		err := fmt.Errorf("%w: %q", domain.ErrServiceNotFound, serviceID)
		r.logExecuteError(ctx, name, serviceID, originalName, "", start, err)
		return r.failure(err)
	}

	target := remote.JoinURL(svc.BaseURL, remote.ExecutionPath(svc.ExecutionPathTemplate, originalName))
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := r.invoker.Invoke(callCtx, serviceID, target, params)
	if err != nil {
		r.logExecuteError(ctx, name, serviceID, originalName, target, start, err)
		return r.failure(err)
	}
	metric.Status = domain.OutcomeSuccess
	return body
}

func (r *Router) failure(err error) json.RawMessage {
	payload, marshalErr := json.Marshal(FailurePayload{
		Status:    FailureStatus,
		Error:     err.Error(),
		Timestamp: r.now().UnixMilli(),
	})
	if marshalErr != nil {
		return json.RawMessage(fmt.Sprintf(`{"status":%q,"error":"unencodable error","timestamp":%d}`, FailureStatus, r.now().UnixMilli()))
	}
	return payload
}

func (r *Router) observe(metric domain.ExecuteMetric) {
	r.metrics.ObserveExecute(metric)
}

func (r *Router) logExecuteError(ctx context.Context, name, serviceID, originalName, target string, start time.Time, err error) {
	fields := []zap.Field{
		telemetry.EventField(telemetry.EventExecuteFailure),
		telemetry.ToolField(name),
		telemetry.ServiceIDField(serviceID),
		telemetry.OriginalNameField(originalName),
		telemetry.DurationField(time.Since(start)),
		zap.Error(err),
	}
	if target != "" {
		fields = append(fields, telemetry.URLField(target))
	}
	if code, ok := domain.CodeFrom(err); ok {
		fields = append(fields, zap.String("code", string(code)))
	}
	telemetry.LoggerWithRequest(ctx, r.logger).Warn("remote execution failed", fields...)
}
