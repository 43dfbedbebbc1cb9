package shipper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lblanc/grafana-integration/agent/internal/config"
	"github.com/lblanc/grafana-integration/pkg/types"
)

// maxErrorBody caps how much of a rejected write response is kept.
const maxErrorBody = 64 << 10

// PublishError is returned when InfluxDB answers a write with a non-2xx
// status. Body holds the start of the response for diagnosis.
type PublishError struct {
	StatusCode int
	Body       string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("influxdb write rejected: status %d: %s", e.StatusCode, e.Body)
}

// Shipper writes line-protocol batches to the InfluxDB 1.x /write endpoint.
// It is safe for concurrent use.
type Shipper struct {
	writeURL string
	http     *http.Client
}

// Option configures a Shipper.
type Option func(*Shipper)

// WithHTTPClient replaces the HTTP client used for writes.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Shipper) { s.http = hc }
}

// New returns a Shipper for the sink described by cfg.
func New(cfg config.InfluxConfig, opts ...Option) *Shipper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultInfluxTimeout
	}
	db := cfg.Database
	if db == "" {
		db = config.DefaultDatabase
	}
	s := &Shipper{
		writeURL: strings.TrimRight(cfg.URL, "/") + "/write?db=" + url.QueryEscape(db),
		http:     &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Publish sends all lines in a single POST. An empty batch is not sent and
// reported as skipped. Failures are returned to the caller and never
// retried; the next poll cycle produces a fresh batch.
func (s *Shipper) Publish(ctx context.Context, lines []types.MetricLine) (*types.PublishOutcome, error) {
	if len(lines) == 0 {
		slog.Warn("shipper: no lines to publish, skipping write")
		return &types.PublishOutcome{Skipped: true}, nil
	}

	payload := encode(lines)
	out := &types.PublishOutcome{Lines: len(lines), Bytes: len(payload)}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.writeURL, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("shipper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := s.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("shipper: post %s: %w", s.writeURL, err)
	}
	defer resp.Body.Close()
	out.StatusCode = resp.StatusCode

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Body = strings.TrimSpace(string(body))
		slog.Error("shipper: write rejected",
			"url", s.writeURL, "status", resp.StatusCode, "body", out.Body, "lines", len(lines))
		return out, &PublishError{StatusCode: resp.StatusCode, Body: out.Body}
	}

	slog.Info("shipper: batch written",
		"status", resp.StatusCode, "lines", len(lines), "bytes", len(payload))
	return out, nil
}
