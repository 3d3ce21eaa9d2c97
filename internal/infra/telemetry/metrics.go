package telemetry

import (
	"time"

	"toolgate/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveRefresh(_ time.Duration, _ domain.OutcomeStatus) {}

func (n *NoopMetrics) ObserveCatalogFetch(_ string, _ time.Duration, _ error) {}

func (n *NoopMetrics) SetRegistryTools(_ int) {}

func (n *NoopMetrics) ObserveExecute(_ domain.ExecuteMetric) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
