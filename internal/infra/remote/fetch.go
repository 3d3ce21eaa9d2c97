package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/telemetry"
)

// FetchCatalog retrieves the raw tool list of one backend. Every failure is
// returned as a *domain.FetchError carrying the service id.
func (c *Client) FetchCatalog(ctx context.Context, svc domain.ServiceDescriptor) ([]domain.RawTool, error) {
	target := JoinURL(svc.BaseURL, svc.CatalogPath)

	var (
		tools   []domain.RawTool
		lastErr error
	)
	_, err := c.breaker(svc.ID, OperationCatalog).Execute(ctx, func(ctx context.Context) ([]byte, error) {
		return c.retrier.Do(ctx, func(ctx context.Context) ([]byte, error) {
			body, err := c.roundTrip(ctx, http.MethodGet, target, nil)
			if err != nil {
				lastErr = err
				return nil, err
			}
			decoded, err := decodeCatalog(body)
			if err != nil {
				lastErr = err
				return nil, err
			}
			tools = decoded
			lastErr = nil
			return body, nil
		})
	})
	if err != nil {
		return nil, &domain.FetchError{ServiceID: svc.ID, Cause: settle(err, lastErr)}
	}

	out := make([]domain.RawTool, 0, len(tools))
	for i, tool := range tools {
		if strings.TrimSpace(tool.Name) == "" {
			c.logger.Warn("skipping catalog entry without name",
				telemetry.EventField(telemetry.EventSkippedTool),
				telemetry.ServiceIDField(svc.ID),
				zap.Int("index", i),
			)
			continue
		}
		out = append(out, tool)
	}
	return out, nil
}

func decodeCatalog(body []byte) ([]domain.RawTool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var tools []domain.RawTool
	if err := json.Unmarshal(trimmed, &tools); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", domain.ErrMalformedResponse, err)
	}
	return tools, nil
}
