package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"toolgate/internal/domain"
)

var nullBody = json.RawMessage("null")

// Invoke posts params to a backend execution URL and returns the response
// body unmodified. Executions are never retried.
func (c *Client) Invoke(ctx context.Context, serviceID, target string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: encode parameters: %v", domain.ErrInvalidParams, err)
	}

	var lastErr error
	body, err := c.breaker(serviceID, OperationExecute).Execute(ctx, func(ctx context.Context) ([]byte, error) {
		data, err := c.roundTrip(ctx, http.MethodPost, target, payload)
		if err != nil {
			lastErr = err
			return nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nullBody, nil
		}
		if !json.Valid(data) {
			lastErr = fmt.Errorf("%w: response is not JSON: %s", domain.ErrMalformedResponse, snippet(data))
			return nil, lastErr
		}
		return data, nil
	})
	if err != nil {
		return nil, settle(err, lastErr)
	}
	return json.RawMessage(body), nil
}
