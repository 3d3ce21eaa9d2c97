package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"toolgate/internal/infra/telemetry"
)

// withMiddleware attaches request metadata and writes one access log line
// per request.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := telemetry.RequestIDFromHeader(r.Header.Get(telemetry.RequestIDHeader))
		ctx, meta := telemetry.EnsureRequestMeta(r.Context(), requestID)
		w.Header().Set(telemetry.RequestIDHeader, meta.RequestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		fields := append(telemetry.RequestFields(meta),
			telemetry.EventField(telemetry.EventHTTPRequest),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			telemetry.StatusCodeField(rec.status),
			telemetry.DurationField(time.Since(start)),
		)
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("http request", fields...)
			return
		}
		s.logger.Debug("http request", fields...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
