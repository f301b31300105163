// Package clients builds the editions API clients from configuration.
package clients

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/authhttp"
	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/config"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/metrics"
)

type Clients struct {
	API      *authhttp.Client
	Editions *editions.Client
}

// NewClients wires the authenticated client and the editions client on top
// of it. m may be nil.
func NewClients(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Clients, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []authhttp.Option{
		authhttp.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		authhttp.WithLogger(logger.With("system", "authhttp")),
	}
	if m != nil {
		opts = append(opts, authhttp.WithObserver(m))
	}
	if cfg.API.CoalesceRefresh {
		opts = append(opts, authhttp.WithCoalescedRefresh())
	}
	if cfg.Observability.Tracing.Enabled {
		opts = append(opts, authhttp.WithTracing())
	}

	api, err := authhttp.New(
		cfg.API.DataURL(),
		cfg.API.OAuthURL(),
		authhttp.NewSession(""),
		authhttp.Credentials{ClientID: cfg.API.ClientID, ClientSecret: cfg.API.ClientSecret},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	edOpts := []editions.Option{editions.WithLogger(logger.With("system", "editions"))}
	if cfg.Dashboard.DetailCacheSize > 0 && cfg.Dashboard.DetailCacheTTL > 0 {
		edOpts = append(edOpts, editions.WithDetailCache(cfg.Dashboard.DetailCacheSize, cfg.Dashboard.DetailCacheTTL))
	}
	ed, err := editions.New(api, edOpts...)
	if err != nil {
		return nil, err
	}

	return &Clients{
		API:      api,
		Editions: ed,
	}, nil
}

// Close releases the editions detail cache.
func (c *Clients) Close() {
	if c.Editions != nil {
		c.Editions.Close()
	}
}
