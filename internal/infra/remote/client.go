package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/telemetry"
)

const (
	maxResponseBytes = 8 << 20
	errorSnippetLen  = 256
)

// Operation selects the breaker a call goes through. Catalog fetches and
// executions trip independently so failing executions never hide a catalog.
type Operation string

const (
	OperationCatalog Operation = "catalog"
	OperationExecute Operation = "execute"
)

type breakerKey struct {
	serviceID string
	op        Operation
}

// Client talks to remote tool backends. Breakers are kept per service id and
// operation.
type Client struct {
	http       *http.Client
	logger     *zap.Logger
	resilience domain.ResilienceConfig
	retrier    retry.Retry[[]byte]

	mu       sync.RWMutex
	breakers map[breakerKey]circuitbreaker.CircuitBreaker[[]byte]
}

func NewClient(httpClient *http.Client, resilience domain.ResilienceConfig, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resilience.RetryMaxAttempts <= 0 {
		resilience.RetryMaxAttempts = domain.DefaultRetryMaxAttempts
	}
	if resilience.BreakerThreshold <= 0 {
		resilience.BreakerThreshold = domain.DefaultBreakerThreshold
	}

	return &Client{
		http:       httpClient,
		logger:     logger.Named("remote"),
		resilience: resilience,
		retrier: retry.New[[]byte](retry.Config{
			MaxAttempts:   resilience.RetryMaxAttempts,
			InitialDelay:  resilience.RetryInitialDelay(),
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// rejected requests and bad payloads will not improve on retry
			NonRetryableErrors: []error{domain.ErrBackendRejected, domain.ErrMalformedResponse},
		}),
		breakers: make(map[breakerKey]circuitbreaker.CircuitBreaker[[]byte]),
	}
}

// BreakerStates reports the circuit state of every breaker created so far,
// keyed "<service>/<operation>".
func (c *Client) BreakerStates() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states := make(map[string]string, len(c.breakers))
	for key, breaker := range c.breakers {
		states[key.serviceID+"/"+string(key.op)] = breaker.State().String()
	}
	return states
}

func (c *Client) breaker(serviceID string, op Operation) circuitbreaker.CircuitBreaker[[]byte] {
	key := breakerKey{serviceID: serviceID, op: op}
	c.mu.RLock()
	breaker, exists := c.breakers[key]
	c.mu.RUnlock()
	if exists {
		return breaker
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if breaker, exists = c.breakers[key]; exists {
		return breaker
	}

	threshold := uint32(c.resilience.BreakerThreshold) // #nosec G115 -- positive, checked in NewClient
	timeout := c.resilience.BreakerTimeout()
	logger := c.logger.With(telemetry.ServiceIDField(serviceID), zap.String("operation", string(op)))
	breaker = circuitbreaker.New[[]byte](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				telemetry.EventField(telemetry.EventBreakerState),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	c.breakers[key] = breaker
	return breaker
}

// countsAsHealthy reports whether an outcome says the backend is reachable.
// Rejections and bad payloads are answers from a live backend, and a caller
// giving up says nothing about it.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrBackendRejected) ||
		errors.Is(err, domain.ErrMalformedResponse) ||
		errors.Is(err, context.Canceled)
}

// roundTrip performs one HTTP exchange and classifies the outcome into the
// backend sentinels.
func (c *Client) roundTrip(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrBackendRejected, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID, ok := telemetry.RequestIDFromContext(ctx); ok {
		req.Header.Set(telemetry.RequestIDHeader, requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrBackendUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, snippet(data))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrBackendRejected, resp.StatusCode, snippet(data))
	}
}

// settle picks the error to surface once the breaker returns. The last
// classified attempt error wins; anything else (open circuit, retry
// exhaustion) is reported as an unavailable backend.
func settle(err, lastErr error) error {
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
}

func snippet(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > errorSnippetLen {
		trimmed = trimmed[:errorSnippetLen]
	}
	return string(trimmed)
}
