package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent        = "event"
	FieldServiceID    = "service_id"
	FieldTool         = "tool"
	FieldOriginalName = "original_name"
	FieldURL          = "url"
	FieldStatusCode   = "status_code"
	FieldRevision     = "revision"
	FieldToolCount    = "tool_count"
	FieldDurationMs   = "duration_ms"
	FieldRequestID    = "request_id"
	FieldTraceID      = "trace_id"
	FieldSpanID       = "span_id"
)

const (
	EventRefreshStart    = "refresh_start"
	EventRefreshSuccess  = "refresh_success"
	EventRefreshFailure  = "refresh_failure"
	EventFetchFailure    = "fetch_failure"
	EventExecuteFailure  = "execute_failure"
	EventExecuteNotFound = "execute_not_found"
	EventSkippedTool     = "skipped_tool"
	EventBreakerState    = "breaker_state"
	EventHTTPRequest     = "http_request"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ServiceIDField(serviceID string) zap.Field {
	return zap.String(FieldServiceID, serviceID)
}

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func OriginalNameField(name string) zap.Field {
	return zap.String(FieldOriginalName, name)
}

func URLField(url string) zap.Field {
	return zap.String(FieldURL, url)
}

func StatusCodeField(code int) zap.Field {
	return zap.Int(FieldStatusCode, code)
}

func RevisionField(revision uint64) zap.Field {
	return zap.Uint64(FieldRevision, revision)
}

func ToolCountField(count int) zap.Field {
	return zap.Int(FieldToolCount, count)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
