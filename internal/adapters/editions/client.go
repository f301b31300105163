// Package editions reads publications from the remote editions API.
package editions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/maypok86/otter"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/authhttp"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
)

// BasePath is the list endpoint, relative to the API base URL.
const BasePath = "magazine/edition"

var (
	ErrEmptyID  = errors.New("publication id is required")
	ErrNotFound = errors.New("publication not found")
)

// Requester is the part of authhttp.Client the editions client needs.
type Requester interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// Client lists and fetches publications.
type Client struct {
	api    Requester
	logger *slog.Logger
	cache  *otter.Cache[string, Publication]
}

type Option func(*clientConfig)

type clientConfig struct {
	logger        *slog.Logger
	cacheCapacity int
	cacheTTL      time.Duration
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithDetailCache keeps up to capacity publication details for ttl.
// A zero capacity or ttl disables the cache.
func WithDetailCache(capacity int, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheCapacity = capacity
		c.cacheTTL = ttl
	}
}

func New(api Requester, opts ...Option) (*Client, error) {
	cfg := clientConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	c := &Client{api: api, logger: cfg.logger}

	if cfg.cacheCapacity > 0 && cfg.cacheTTL > 0 {
		cache, err := otter.MustBuilder[string, Publication](cfg.cacheCapacity).
			WithTTL(cfg.cacheTTL).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build detail cache: %w", err)
		}
		c.cache = &cache
	}

	return c, nil
}

// List fetches the page of publications described by params.
func (c *Client) List(ctx context.Context, params query.Parameters) (*Page, error) {
	path, err := querystring.Encode(params, BasePath)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := c.api.GetJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}

	page := envelope.toPage()
	c.logger.Debug("listed publications",
		"params", params.String(),
		"items", len(page.Items),
		"total_items", page.TotalItems,
		"page_count", page.PageCount)
	return page, nil
}

// Get fetches one publication. Details are served from the cache when it is
// enabled and holds a fresh entry.
func (c *Client) Get(ctx context.Context, id string) (*Publication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}

	if c.cache != nil {
		if pub, ok := c.cache.Get(id); ok {
			return &pub, nil
		}
	}

	var pub Publication
	if err := c.api.GetJSON(ctx, BasePath+"/"+url.PathEscape(id), &pub); err != nil {
		if authhttp.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
		}
		return nil, fmt.Errorf("failed to get publication %s: %w", id, err)
	}

	if c.cache != nil {
		c.cache.Set(id, pub)
	}
	return &pub, nil
}

// Forget drops a cached detail.
func (c *Client) Forget(id string) {
	if c.cache != nil {
		c.cache.Delete(id)
	}
}

// Close releases the cache.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
