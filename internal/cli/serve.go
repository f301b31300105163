package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/edition-dashboard/internal/api"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port            int
	CleanupInterval time.Duration
}

func newServeCommand(root *RootFlags) *cobra.Command {
	flags := &ServeFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(root, flags)
		},
	}

	cmd.Flags().IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().DurationVar(&flags.CleanupInterval, "cleanup-interval", 5*time.Minute, "How often idle sessions are removed")
	return cmd
}

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(root *RootFlags, flags *ServeFlags) error {
	cfg := root.LoadConfig()
	if flags.Port > 0 {
		cfg.Server.Port = flags.Port
	}

	app, err := NewApp(context.Background(), cfg, "api")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(ctx); err != nil {
			app.Logger.Error("shutdown error", slog.Any("error", err))
		}
	}()
	logger := app.Logger

	app.Dashboard.StartBackgroundCleanup(flags.CleanupInterval)
	defer app.Dashboard.StopBackgroundCleanup()

	apiCfg := api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultLimit:   cfg.Dashboard.DefaultLimit,
		MetricsPath:    cfg.Observability.Metrics.Path,
		Tracing:        cfg.Observability.Tracing.Enabled,
	}

	server := api.NewServer(apiCfg, app.Dashboard, app.Store, app.Metrics, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
