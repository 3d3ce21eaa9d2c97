package domain

import "time"

// OutcomeStatus labels the outcome of an observed operation.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the operation succeeded.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeError indicates the operation failed.
	OutcomeError OutcomeStatus = "error"
	// OutcomePartial indicates a refresh where some backends failed.
	OutcomePartial OutcomeStatus = "partial"
	// OutcomeNotFound indicates the requested tool was unknown.
	OutcomeNotFound OutcomeStatus = "not_found"
)

// ToolOrigin labels where an executed tool lives.
type ToolOrigin string

const (
	// OriginLocal is a tool served by the local provider.
	OriginLocal ToolOrigin = "local"
	// OriginRemote is a tool served by a remote backend.
	OriginRemote ToolOrigin = "remote"
)

// ExecuteMetric captures metrics for a routed execution.
type ExecuteMetric struct {
	Origin    ToolOrigin
	ServiceID string
	Status    OutcomeStatus
	Duration  time.Duration
}

// Metrics records operational metrics for the registry and router.
type Metrics interface {
	ObserveRefresh(duration time.Duration, status OutcomeStatus)
	ObserveCatalogFetch(serviceID string, duration time.Duration, err error)
	SetRegistryTools(count int)
	ObserveExecute(metric ExecuteMetric)
}
