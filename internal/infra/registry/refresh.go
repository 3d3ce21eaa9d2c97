package registry

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"toolgate/internal/domain"
	"toolgate/internal/infra/namespace"
	"toolgate/internal/infra/telemetry"
)

type fetchResult struct {
	serviceID string
	tools     []domain.ToolDescriptor
	err       error
}

// refreshLocked runs one cycle. The caller must hold the gate.
func (r *Registry) refreshLocked(ctx context.Context) (domain.RefreshReport, error) {
	start := time.Now()
	r.logger.Debug("refresh started", telemetry.EventField(telemetry.EventRefreshStart))

	var local []domain.ToolDescriptor
	if r.includeLocal && r.local != nil {
		local = r.local.ListTools()
	}
	results := r.fetchRemote(ctx)

	if err := ctx.Err(); err != nil {
		r.metrics.ObserveRefresh(time.Since(start), domain.OutcomeError)
		r.logger.Warn("refresh abandoned",
			telemetry.EventField(telemetry.EventRefreshFailure),
			zap.Error(err),
		)
		return domain.RefreshReport{}, err
	}

	merged := make(map[string]domain.ToolDescriptor, len(local))
	for _, tool := range local {
		merged[tool.Name] = tool
	}

	report := domain.RefreshReport{LocalTools: len(local)}
	for _, res := range results {
		if res.err != nil {
			report.FailedServices = append(report.FailedServices, res.serviceID)
			continue
		}
		for _, tool := range res.tools {
			if _, exists := merged[tool.Name]; exists {
				r.logger.Debug("tool name collision, later entry wins",
					telemetry.ToolField(tool.Name),
					telemetry.ServiceIDField(res.serviceID),
				)
			}
			merged[tool.Name] = tool
		}
	}

	prev := r.current.Load()
	next := newSnapshot(merged, prev.info.Revision+1, r.now(), r.logger)
	index, err := buildSearchIndex(next.sorted)
	if err != nil {
		r.logger.Warn("search index build failed, falling back to scan", zap.Error(err))
	} else {
		next.index = index
	}
	r.current.Store(next)

	report.Revision = next.info.Revision
	report.ETag = next.info.ETag
	report.Tools = next.info.Tools
	report.RemoteTools = next.remoteCount()
	report.Duration = time.Since(start)

	status := domain.OutcomeSuccess
	if len(report.FailedServices) > 0 {
		status = domain.OutcomePartial
	}
	r.metrics.ObserveRefresh(report.Duration, status)
	r.metrics.SetRegistryTools(report.Tools)
	r.beat()

	r.logger.Info("refresh completed",
		telemetry.EventField(telemetry.EventRefreshSuccess),
		telemetry.RevisionField(report.Revision),
		telemetry.ToolCountField(report.Tools),
		zap.Int("local_tools", report.LocalTools),
		zap.Int("remote_tools", report.RemoteTools),
		zap.Strings("failed_services", report.FailedServices),
		telemetry.DurationField(report.Duration),
	)
	return report, nil
}

// fetchRemote fans out catalog fetches with bounded concurrency. Results keep
// configuration order regardless of completion order.
func (r *Registry) fetchRemote(ctx context.Context) []fetchResult {
	if !r.remote.Enabled || r.fetcher == nil {
		return nil
	}
	services := r.remote.EnabledServices()
	if len(services) == 0 {
		return nil
	}

	results := make([]fetchResult, len(services))
	var g errgroup.Group
	g.SetLimit(refreshWorkerCount(r.remote, len(services)))
	for i, svc := range services {
		g.Go(func() error {
			results[i] = r.fetchService(ctx, svc)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Registry) fetchService(ctx context.Context, svc domain.ServiceDescriptor) fetchResult {
	fetchCtx, cancel := context.WithTimeout(ctx, r.remote.FetchTimeout())
	defer cancel()

	start := time.Now()
	raw, err := r.fetcher.FetchCatalog(fetchCtx, svc)
	duration := time.Since(start)
	r.metrics.ObserveCatalogFetch(svc.ID, duration, err)
	if err != nil {
		r.logger.Warn("catalog fetch failed",
			telemetry.EventField(telemetry.EventFetchFailure),
			telemetry.ServiceIDField(svc.ID),
			telemetry.DurationField(duration),
			zap.Error(err),
		)
		return fetchResult{serviceID: svc.ID, err: err}
	}

	tools := make([]domain.ToolDescriptor, 0, len(raw))
	for _, tool := range raw {
		if tool.Name == "" {
			continue
		}
		tools = append(tools, namespace.Qualify(svc.ID, tool))
	}
	return fetchResult{serviceID: svc.ID, tools: tools}
}

func refreshWorkerCount(cfg domain.RemoteServicesConfig, total int) int {
	limit := cfg.RefreshConcurrency
	if limit <= 0 {
		limit = domain.DefaultRefreshConcurrency
	}
	if limit > total {
		return total
	}
	return limit
}
