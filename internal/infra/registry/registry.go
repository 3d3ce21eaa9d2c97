// Package registry keeps the merged tool catalog of the gateway. Refreshes
// build a complete new snapshot and publish it with a single pointer swap.
package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"toolgate/internal/domain"
	"toolgate/internal/infra/namespace"
	"toolgate/internal/infra/telemetry"
)

const (
	forceRefreshKey = "force-refresh"
	heartbeatName   = "registry.refresh"
)

type Registry struct {
	remote       domain.RemoteServicesConfig
	includeLocal bool
	local        domain.LocalProvider
	fetcher      domain.CatalogFetcher
	metrics      domain.Metrics
	logger       *zap.Logger
	health       *telemetry.HealthTracker
	gate         *RefreshGate
	flight       singleflight.Group
	now          func() time.Time

	current atomic.Pointer[snapshot]

	mu          sync.Mutex
	started     bool
	ticker      *time.Ticker
	stop        chan struct{}
	refreshBeat *telemetry.Heartbeat
}

func NewRegistry(
	cfg domain.GatewayConfig,
	local domain.LocalProvider,
	fetcher domain.CatalogFetcher,
	metrics domain.Metrics,
	health *telemetry.HealthTracker,
	logger *zap.Logger,
) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	r := &Registry{
		remote:       cfg.RemoteServices,
		includeLocal: cfg.IncludeLocalTools,
		local:        local,
		fetcher:      fetcher,
		metrics:      metrics,
		logger:       logger.Named("registry"),
		health:       health,
		gate:         NewRefreshGate(),
		now:          time.Now,
	}
	r.current.Store(emptySnapshot())
	return r
}

// Start performs one synchronous refresh and, when remote aggregation is on,
// schedules periodic refreshes until Stop or ctx cancellation.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.stop = make(chan struct{})
	stop := r.stop
	r.mu.Unlock()

	interval := r.remote.RefreshInterval()
	periodic := r.remote.Enabled && r.fetcher != nil && len(r.remote.EnabledServices()) > 0
	if periodic && r.health != nil {
		r.mu.Lock()
		r.refreshBeat = r.health.Register(heartbeatName, interval*3)
		r.mu.Unlock()
	}

	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Warn("initial refresh failed", zap.Error(err))
	}
	if !periodic {
		return
	}

	ticker := time.NewTicker(interval)
	r.mu.Lock()
	r.ticker = ticker
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				r.scheduledRefresh(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	if r.refreshBeat != nil {
		r.refreshBeat.Stop()
		r.refreshBeat = nil
	}
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.started = false
}

func (r *Registry) beat() {
	r.mu.Lock()
	beat := r.refreshBeat
	r.mu.Unlock()
	beat.Beat()
}

func (r *Registry) scheduledRefresh(ctx context.Context) {
	if !r.gate.TryAcquire() {
		r.logger.Debug("refresh already running, skipping tick")
		return
	}
	defer r.gate.Release()

	if _, err := r.refreshLocked(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("scheduled refresh failed", zap.Error(err))
	}
}

// Refresh rebuilds the catalog from the local provider and every enabled
// backend. Backend failures are reported, never returned; an error means the
// cycle was abandoned and the previous snapshot stays published.
func (r *Registry) Refresh(ctx context.Context) (domain.RefreshReport, error) {
	if err := r.gate.Acquire(ctx); err != nil {
		return domain.RefreshReport{}, err
	}
	defer r.gate.Release()
	return r.refreshLocked(ctx)
}

// ForceRefresh coalesces concurrent callers into one refresh and returns its
// report. The shared refresh is detached from every caller's cancellation and
// bounded only by the per-service fetch timeouts; a caller whose ctx ends
// stops waiting without abandoning the cycle for the others.
func (r *Registry) ForceRefresh(ctx context.Context) (domain.RefreshReport, error) {
	detached := context.WithoutCancel(ctx)
	results := r.flight.DoChan(forceRefreshKey, func() (any, error) {
		return r.Refresh(detached)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return domain.RefreshReport{}, res.Err
		}
		return res.Val.(domain.RefreshReport), nil
	case <-ctx.Done():
		return domain.RefreshReport{}, ctx.Err()
	}
}

// Lookup returns a copy of the named tool; callers may modify it freely.
func (r *Registry) Lookup(name string) (domain.ToolDescriptor, bool) {
	tool, ok := r.current.Load().tools[name]
	if !ok {
		return domain.ToolDescriptor{}, false
	}
	return tool.Clone(), true
}

// All returns copies of the current tools sorted by name.
func (r *Registry) All() []domain.ToolDescriptor {
	return cloneTools(r.current.Load().sorted)
}

// Listing returns the sorted tools together with the snapshot they were read
// from, so the pair always agrees on the ETag.
func (r *Registry) Listing() ([]domain.ToolDescriptor, domain.SnapshotInfo) {
	snap := r.current.Load()
	return cloneTools(snap.sorted), snap.info
}

// RemoteTools returns only the backend-provided tools, sorted by name.
func (r *Registry) RemoteTools() []domain.ToolDescriptor {
	var out []domain.ToolDescriptor
	for _, tool := range r.current.Load().sorted {
		if _, _, remote := namespace.Provenance(tool); remote {
			out = append(out, tool.Clone())
		}
	}
	return out
}

func (r *Registry) Search(query string, limit int) ([]domain.ToolDescriptor, error) {
	found, err := r.current.Load().search(query, limit)
	if err != nil {
		return nil, err
	}
	return cloneTools(found), nil
}

func cloneTools(tools []domain.ToolDescriptor) []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, len(tools))
	for i, tool := range tools {
		out[i] = tool.Clone()
	}
	return out
}

func (r *Registry) Snapshot() domain.SnapshotInfo {
	return r.current.Load().info
}

func (r *Registry) Ready() bool {
	return r.current.Load().info.Ready
}

var _ domain.ToolResolver = (*Registry)(nil)
