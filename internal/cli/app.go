package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/clients"
	"github.com/eshaffer321/edition-dashboard/internal/application/dashboard"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/config"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/logging"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/metrics"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/tracing"
)

// App holds everything a command needs, built from one Config.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Store     storage.Repository
	Clients   *clients.Clients
	Dashboard *dashboard.Service

	shutdownTracing tracing.Shutdown
}

// NewApp validates cfg and wires storage, clients and the dashboard service.
// Call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, system string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, system)

	app := &App{
		Config: cfg,
		Logger: logger,
	}
	if cfg.Observability.Metrics.Enabled {
		app.Metrics = metrics.New()
	}

	shutdown, err := tracing.Setup(ctx, cfg.Observability.Tracing)
	if err != nil {
		return nil, err
	}
	app.shutdownTracing = shutdown

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	app.Store = store

	c, err := clients.NewClients(cfg, logger, app.Metrics)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to create API clients: %w", err)
	}
	app.Clients = c

	app.Dashboard = dashboard.NewService(c.Editions, store,
		dashboard.WithLogger(logger.With("system", "dashboard")),
		dashboard.WithMetrics(app.Metrics),
		dashboard.WithDefaultLimit(cfg.Dashboard.DefaultLimit),
		dashboard.WithIdleTTL(cfg.Dashboard.SessionIdleTTL),
	)

	return app, nil
}

// Close releases storage and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Clients != nil {
		a.Clients.Close()
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
