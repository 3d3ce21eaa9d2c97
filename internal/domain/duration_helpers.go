package domain

import "time"

// RefreshInterval returns the period between catalog refreshes, defaulting when unset.
func (c RemoteServicesConfig) RefreshInterval() time.Duration {
	return millisOrDefault(c.RefreshIntervalMs, DefaultRefreshIntervalMs)
}

// FetchTimeout returns the deadline for a single catalog fetch.
func (c RemoteServicesConfig) FetchTimeout() time.Duration {
	return millisOrDefault(c.FetchTimeoutMs, DefaultFetchTimeoutMs)
}

// ExecuteTimeout returns the deadline for a single remote execution.
func (c RemoteServicesConfig) ExecuteTimeout() time.Duration {
	return millisOrDefault(c.ExecuteTimeoutMs, DefaultExecuteTimeoutMs)
}

// RetryInitialDelay returns the first backoff delay for catalog retries.
func (c ResilienceConfig) RetryInitialDelay() time.Duration {
	return millisOrDefault(c.RetryInitialDelayMs, DefaultRetryInitialDelayMs)
}

// BreakerTimeout returns how long an open circuit stays open.
func (c ResilienceConfig) BreakerTimeout() time.Duration {
	return millisOrDefault(c.BreakerTimeoutMs, DefaultBreakerTimeoutMs)
}

func millisOrDefault(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}
