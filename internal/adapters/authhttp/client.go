package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
)

// maxErrorBody caps how much of a failed response is kept on HTTPError.
const maxErrorBody = 64 << 10

// Credentials are the client-credentials grant inputs.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Observer receives request and token refresh outcomes. Status is 0 when
// the request never got a response.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
	ObserveRefresh(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObserveRefresh(error)                      {}

// Client talks to the remote API on behalf of a Session.
type Client struct {
	baseURL    string
	tokenURL   string
	session    *Session
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer

	traced   bool
	coalesce bool
	group    singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithCoalescedRefresh makes concurrent 403s share one in-flight token
// exchange. Without it every 403 runs its own exchange.
func WithCoalescedRefresh() Option {
	return func(c *Client) { c.coalesce = true }
}

// WithTracing wraps the transport with OpenTelemetry spans.
func WithTracing() Option {
	return func(c *Client) { c.traced = true }
}

// New builds a client for baseURL. Requests that hit a 403 exchange creds at
// tokenURL and store the new token on session.
func New(baseURL, tokenURL string, session *Session, creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, &querystring.InvalidBaseURLError{BaseURL: baseURL}
	}
	if strings.TrimSpace(tokenURL) == "" {
		return nil, &querystring.InvalidBaseURLError{BaseURL: tokenURL}
	}
	if session == nil {
		session = NewSession("")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenURL:   tokenURL,
		session:    session,
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.traced {
		hc := *c.httpClient
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = otelhttp.NewTransport(base)
		c.httpClient = &hc
	}

	return c, nil
}

// Session returns the session the client reads its token from.
func (c *Client) Session() *Session {
	return c.session
}

// Do sends a request to path (relative to the base URL). body, when not nil,
// is sent as JSON. A 2xx response is returned with its body open; any other
// status becomes an *HTTPError.
//
// A 403 is retried once after a token exchange. A 403 on the retry is
// returned as is. If the exchange itself fails the token is cleared and a
// *CredentialRefreshError is returned.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, payload)
	if err == nil {
		return resp, nil
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.IsForbidden() {
		return nil, err
	}

	c.logger.Debug("request forbidden, refreshing credentials",
		"method", method,
		"path", path)

	if refreshErr := c.refresh(ctx); refreshErr != nil {
		c.logger.Warn("credential refresh failed",
			"method", method,
			"path", path,
			"error", refreshErr)
		return nil, &CredentialRefreshError{Cause: refreshErr, Original: httpErr}
	}

	return c.send(ctx, method, path, payload)
}

func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// GetJSON GETs path and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	target := c.resolve(path)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveRequest(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	c.observer.ObserveRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, drainError(resp, method, target)
	}
	return resp, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return payload, nil
}

func drainError(resp *http.Response, method, target string) *HTTPError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
