package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lblanc/grafana-integration/agent/internal/config"
)

// maxBodySize caps a single REST response. Large server groups return a few
// MB for physicaldisks; anything beyond this is treated as a broken reply.
const maxBodySize = 64 << 20

var (
	// ErrNotArray is returned when a response body is not a JSON array.
	ErrNotArray = errors.New("response is not a JSON array")

	// ErrNoSample is returned when the performance array is empty.
	ErrNoSample = errors.New("no performance sample returned")
)

// TransportError is a network-level failure of a REST call.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rest transport %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Observer receives the outcome of every REST call.
type Observer interface {
	ObserveRequest(endpoint string, statusCode int, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, error, time.Duration) {}

// Client talks to the DataCore REST service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limit   int
	obs     Observer
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports every REST call to obs.
func WithObserver(obs Observer) Option {
	return func(c *Client) { c.obs = obs }
}

// WithHTTPClient replaces the HTTP client. Authentication headers are then
// the caller's responsibility.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the REST service described by cfg.
// The HTTP client is built once and reused across calls.
func New(cfg config.RESTConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.BaseURL(),
		http:    buildHTTPClient(cfg),
		limit:   cfg.MaxConcurrency,
		obs:     nopObserver{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.limit <= 0 {
		c.limit = config.DefaultMaxConcurrency
	}
	return c
}

// authRoundTripper injects the DataCore headers into every request.
//
// The Authorization value is the literal "Basic <user> <password>" the REST
// service expects, not RFC 7617 base64 credentials.
type authRoundTripper struct {
	base       http.RoundTripper
	auth       string
	serverHost string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", t.auth)
	if t.serverHost != "" {
		req.Header.Set("ServerHost", t.serverHost)
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs the http.Client for the REST service.
func buildHTTPClient(cfg config.RESTConfig) *http.Client {
	transport := &authRoundTripper{
		base: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
			},
			MaxIdleConnsPerHost: cfg.MaxConcurrency,
		},
		auth:       fmt.Sprintf("Basic %s %s", cfg.Username, cfg.Secret()),
		serverHost: cfg.DataCoreServer,
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultRESTTimeout
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// get performs one GET below the base URL and returns the body and status.
// Only transport failures are errors; the status is left to the caller.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, int, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		err = &TransportError{URL: url, Err: err}
		c.obs.ObserveRequest(endpoint, 0, err, time.Since(start))
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		err = &TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
		c.obs.ObserveRequest(endpoint, resp.StatusCode, err, time.Since(start))
		return nil, resp.StatusCode, err
	}

	c.obs.ObserveRequest(endpoint, resp.StatusCode, nil, time.Since(start))
	if !isSuccess(resp.StatusCode) {
		slog.Error("scraper: unexpected response status",
			"url", url, "status", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

// decodeArray parses body as a JSON array.
func decodeArray(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotArray)
	}
	r := gjson.ParseBytes(body)
	if !r.IsArray() {
		return nil, ErrNotArray
	}
	return r.Array(), nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
