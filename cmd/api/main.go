// Command api runs only the dashboard HTTP API. It is equivalent to
// "dashboard serve".
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/eshaffer321/edition-dashboard/internal/cli"
)

func main() {
	root := &cli.RootFlags{}
	flags := &cli.ServeFlags{}

	flag.StringVar(&root.ConfigPath, "config", "config.yaml", "Configuration file path")
	flag.BoolVar(&root.Verbose, "verbose", false, "Enable verbose logging")
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	flag.DurationVar(&flags.CleanupInterval, "cleanup-interval", 5*time.Minute, "How often idle sessions are removed")
	flag.Parse()

	if err := cli.RunServe(root, flags); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
