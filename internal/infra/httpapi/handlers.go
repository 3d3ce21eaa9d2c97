package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/telemetry"
)

const maxRequestBodyBytes = 1 << 20

// ExecuteRequest is the body of POST /api/execute.
type ExecuteRequest struct {
	ToolName   string         `json:"toolName"`
	Parameters map[string]any `json:"parameters"`
}

// HealthStatus is returned by GET /api/health.
type HealthStatus struct {
	Status   string            `json:"status"`
	Revision uint64            `json:"revision"`
	ETag     string            `json:"etag"`
	Tools    int               `json:"tools"`
	Ready    bool              `json:"ready"`
	Breakers map[string]string `json:"breakers,omitempty"`
}

// RefreshResponse is returned by POST /admin/remote-services/refresh.
type RefreshResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ToolCount  int    `json:"toolCount"`
	TotalTools int    `json:"totalTools"`
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, info := s.catalog.Listing()
	etag := strconv.Quote(info.ETag)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, success(tools))
}

func (s *Server) handleSearchTools(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, failure(CodeInvalidRequest, fmt.Sprintf("invalid limit %q", raw), nil))
			return
		}
		limit = parsed
	}

	tools, err := s.catalog.Search(query.Get("q"), limit)
	if err != nil {
		s.requestLogger(r).Error("tool search failed", zap.Error(err))
		writeJSON(w, http.StatusOK, failure(CodeSearchError, "Error searching tools", err.Error()))
		return
	}
	if tools == nil {
		tools = []domain.ToolDescriptor{}
	}
	writeJSON(w, http.StatusOK, success(tools))
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tool, ok := s.catalog.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusOK, failure(CodeToolNotFound, "Not Found: "+name, nil))
		return
	}
	writeJSON(w, http.StatusOK, success(tool))
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(CodeInvalidRequest, "invalid request body", err.Error()))
		return
	}
	name := strings.TrimSpace(req.ToolName)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, failure(CodeInvalidRequest, "toolName is required", nil))
		return
	}

	result, err := s.executor.Execute(r.Context(), name, req.Parameters)
	if err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			writeJSON(w, http.StatusOK, failure(CodeExecutionError, "Not Found: "+name, nil))
			return
		}
		code, _ := domain.CodeFrom(err)
		s.requestLogger(r).Warn("tool execution failed",
			telemetry.EventField(telemetry.EventExecuteFailure),
			telemetry.ToolField(name),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, failure(CodeExecutionError, "Execution failed: "+name, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, success(result))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := s.catalog.Snapshot()
	status := HealthStatus{
		Status:   "ok",
		Revision: info.Revision,
		ETag:     info.ETag,
		Tools:    info.Tools,
		Ready:    info.Ready,
	}
	if s.breakers != nil {
		status.Breakers = s.breakers.BreakerStates()
	}
	writeJSON(w, http.StatusOK, success(status))
}

func (s *Server) handleRemoteConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.remote
	if cfg.Services == nil {
		cfg.Services = []domain.ServiceDescriptor{}
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleRemoteTools(w http.ResponseWriter, _ *http.Request) {
	tools := s.catalog.RemoteTools()
	if tools == nil {
		tools = []domain.ToolDescriptor{}
	}
	writeJSON(w, http.StatusOK, tools)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	logger.Info("manual refresh of remote tools requested")

	report, err := s.catalog.ForceRefresh(r.Context())
	if err != nil {
		logger.Error("manual refresh failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{
		Status:     "success",
		Message:    "Remote tools refreshed successfully",
		ToolCount:  report.RemoteTools,
		TotalTools: report.Tools,
	})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return telemetry.LoggerWithRequest(r.Context(), s.logger)
}
