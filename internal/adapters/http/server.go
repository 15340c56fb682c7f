// Package http provides the HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/coastgrid/coastgrid/internal/application"
	"github.com/coastgrid/coastgrid/internal/config"
)

// Server wraps the HTTP server with application handlers. The ledger
// performs no locking of its own, so every handler that touches it
// holds the server's ledger mutex; the catalog synchronizes itself.
type Server struct {
	server  *http.Server
	router  *mux.Router
	ledger  *application.Ledger
	catalog *application.Catalog
	health  *application.HealthService
	logger  *slog.Logger
	config  config.ServerConfig
	grid    config.GridConfig

	ledgerMu sync.Mutex
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg config.ServerConfig,
	grid config.GridConfig,
	ledger *application.Ledger,
	catalog *application.Catalog,
	health *application.HealthService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		ledger:  ledger,
		catalog: catalog,
		health:  health,
		logger:  logger,
		config:  cfg,
		grid:    grid,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Add middleware
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// Add CORS middleware if configured
	if s.config.CORS.Enabled() {
		r.Use(s.corsMiddleware)
	}

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// ROI table endpoints
	api.HandleFunc("/rois", s.handleGetROIs).Methods(http.MethodGet)
	api.HandleFunc("/rois", s.handleAddROIs).Methods(http.MethodPost)
	api.HandleFunc("/rois", s.handleReplaceROIs).Methods(http.MethodPut)
	api.HandleFunc("/rois", s.handleRemoveROIs).Methods(http.MethodDelete)
	api.HandleFunc("/rois/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/rois/{id}", s.handleRemoveROI).Methods(http.MethodDelete)

	// Per-cell download settings
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSetSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPatch)

	// Extraction results
	api.HandleFunc("/extractions", s.handleListExtractions).Methods(http.MethodGet)
	api.HandleFunc("/extractions", s.handleRemoveAllExtractions).Methods(http.MethodDelete)
	api.HandleFunc("/rois/{id}/extraction", s.handleGetExtraction).Methods(http.MethodGet)
	api.HandleFunc("/rois/{id}/extraction", s.handleSetExtraction).Methods(http.MethodPut)
	api.HandleFunc("/rois/{id}/extraction", s.handleRemoveExtraction).Methods(http.MethodDelete)

	// Cross-shore distance series
	api.HandleFunc("/distances", s.handleAllDistances).Methods(http.MethodGet)
	api.HandleFunc("/distances", s.handleRemoveAllDistances).Methods(http.MethodDelete)
	api.HandleFunc("/rois/{id}/distances", s.handleGetDistances).Methods(http.MethodGet)
	api.HandleFunc("/rois/{id}/distances", s.handleSetDistances).Methods(http.MethodPut)
	api.HandleFunc("/rois/{id}/distances", s.handleRemoveDistances).Methods(http.MethodDelete)

	// Shoreline catalog endpoints (only if a catalog is configured)
	if s.catalog != nil {
		api.HandleFunc("/sources", s.handleListSources).Methods(http.MethodGet)
		api.HandleFunc("/sources/refresh", s.handleRefreshSources).Methods(http.MethodPost)
	}

	// Ledger persistence
	api.HandleFunc("/ledger/persist", s.handlePersist).Methods(http.MethodPost)
	api.HandleFunc("/ledger/restore", s.handleRestore).Methods(http.MethodPost)

	// OpenAPI spec and Swagger UI
	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleSwaggerUI).Methods(http.MethodGet)
	r.HandleFunc("/swagger", s.handleSwaggerUI).Methods(http.MethodGet)

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
