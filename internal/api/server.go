package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/eshaffer321/edition-dashboard/internal/api/handlers"
	"github.com/eshaffer321/edition-dashboard/internal/api/middleware"
	"github.com/eshaffer321/edition-dashboard/internal/application/dashboard"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/metrics"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	DefaultLimit   int
	MetricsPath    string
	Tracing        bool
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		DefaultLimit:   10,
		MetricsPath:    "/metrics",
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	dashboard  *dashboard.Service
	runs       storage.FetchRunRepository
	metrics    *metrics.Metrics
}

// NewServer creates a new API server.
// If runs is nil the fetch log endpoints are not available. If m is nil
// no metrics endpoint is mounted.
func NewServer(cfg Config, svc *dashboard.Service, runs storage.FetchRunRepository, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		logger:    logger,
		dashboard: svc,
		runs:      runs,
		metrics:   m,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger, "/health", s.config.MetricsPath))
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Get)

	if s.metrics != nil && s.config.MetricsPath != "" {
		s.router.GET(s.config.MetricsPath, gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		optionsHandler := handlers.NewOptionsHandler(s.config.DefaultLimit)
		api.GET("/options", optionsHandler.Get)

		publicationsHandler := handlers.NewPublicationsHandler(s.dashboard, s.logger)
		api.GET("/publications", publicationsHandler.List)
		api.GET("/publications/:id", publicationsHandler.Get)

		sessionsHandler := handlers.NewSessionsHandler(s.dashboard, s.logger)
		sessions := api.Group("/sessions")
		sessions.POST("", sessionsHandler.Create)
		sessions.GET("/:id", sessionsHandler.Get)
		sessions.DELETE("/:id", sessionsHandler.Delete)
		sessions.POST("/:id/filters", sessionsHandler.AddFilter)
		sessions.DELETE("/:id/filters", sessionsHandler.RemoveFilter)
		sessions.POST("/:id/order-by", sessionsHandler.AddSortClause)
		sessions.DELETE("/:id/order-by", sessionsHandler.RemoveSortClause)
		sessions.PUT("/:id/page", sessionsHandler.SetPage)
		sessions.PUT("/:id/limit", sessionsHandler.SetLimit)
		sessions.GET("/:id/results", sessionsHandler.Results)

		// Fetch log
		if s.runs != nil {
			runsHandler := handlers.NewRunsHandler(s.runs, s.logger)
			api.GET("/runs", runsHandler.List)
			api.GET("/runs/:id", runsHandler.Get)
		}
	}
}

// Handler returns the root handler, wrapped for tracing when enabled.
func (s *Server) Handler() http.Handler {
	if !s.config.Tracing {
		return s.router
	}
	return otelhttp.NewHandler(s.router, "dashboard-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
