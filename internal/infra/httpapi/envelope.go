package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the response envelope.
const (
	CodeToolNotFound   = "TOOL_NOT_FOUND"
	CodeExecutionError = "EXECUTION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeSearchError    = "SEARCH_ERROR"
)

// Envelope wraps every /api response. Failures are reported in Error with
// Success false; the HTTP status stays 200 unless the request itself was
// unreadable.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func failure(code, message string, details any) Envelope {
	return Envelope{
		Error: &EnvelopeError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
