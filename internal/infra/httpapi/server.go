// Package httpapi exposes the gateway over HTTP: the /api tool catalog and
// execution endpoints plus the /admin/remote-services surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"toolgate/internal/domain"
)

// Catalog is the read side of the tool registry served by the edge.
type Catalog interface {
	Listing() ([]domain.ToolDescriptor, domain.SnapshotInfo)
	Lookup(name string) (domain.ToolDescriptor, bool)
	Search(query string, limit int) ([]domain.ToolDescriptor, error)
	RemoteTools() []domain.ToolDescriptor
	Snapshot() domain.SnapshotInfo
	ForceRefresh(ctx context.Context) (domain.RefreshReport, error)
}

// Executor runs a tool by its registry name.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) (json.RawMessage, error)
}

// BreakerReporter reports per-backend circuit breaker states.
type BreakerReporter interface {
	BreakerStates() map[string]string
}

type Options struct {
	Addr     string
	Remote   domain.RemoteServicesConfig
	Catalog  Catalog
	Executor Executor
	Breakers BreakerReporter
	Logger   *zap.Logger
}

type Server struct {
	addr     string
	remote   domain.RemoteServicesConfig
	catalog  Catalog
	executor Executor
	breakers BreakerReporter
	logger   *zap.Logger
	mux      *http.ServeMux
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := opts.Addr
	if addr == "" {
		addr = domain.DefaultListenAddress
	}
	s := &Server{
		addr:     addr,
		remote:   opts.Remote,
		catalog:  opts.Catalog,
		executor: opts.Executor,
		breakers: opts.Breakers,
		logger:   logger.Named("httpapi"),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/tools", s.handleListTools)
	s.mux.HandleFunc("GET /api/tools/search", s.handleSearchTools)
	s.mux.HandleFunc("GET /api/tools/{name}", s.handleGetTool)
	s.mux.HandleFunc("POST /api/execute", s.handleExecute)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /admin/remote-services/config", s.handleRemoteConfig)
	s.mux.HandleFunc("GET /admin/remote-services/tools", s.handleRemoteTools)
	s.mux.HandleFunc("POST /admin/remote-services/refresh", s.handleRefresh)
}

// Handler returns the routed handler wrapped with request middleware.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.mux)
}

// Run serves the API until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("api server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("api server shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("api server stopped")
		return nil
	}
}
