// Package http provides a sink.Sink that forwards matched events to an
// HTTP endpoint via POST. A single outbound POST per event doesn't need
// more than net/http's client, so no third-party HTTP client is pulled
// in here.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"logroute/internal/logging"
	"logroute/internal/router"
)

// Config holds HTTP sink configuration.
type Config struct {
	// URL is the destination endpoint. Forward issues a POST to this URL.
	URL string

	// Timeout bounds a single Forward call. Zero uses a 10 second default.
	Timeout time.Duration

	// Headers are sent on every request, e.g. an Authorization header.
	Headers map[string]string

	Logger *slog.Logger
}

// Sink forwards matched events to an HTTP endpoint.
type Sink struct {
	url     string
	headers map[string]string
	client  *http.Client
	logger  *slog.Logger
}

// New creates an HTTP sink per cfg.
func New(cfg Config) *Sink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sink{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.Default(cfg.Logger).With("component", "sink", "type", "http", "url", cfg.URL),
	}
}

// Forward marshals e as JSON and posts it to the configured URL. A
// non-2xx response is treated as an error.
func (s *Sink) Forward(ctx context.Context, e router.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event for %q: %w", s.url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %q: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post to %q: unexpected status %d", s.url, resp.StatusCode)
	}
	return nil
}

// Close is a no-op: the underlying http.Client has no resources that
// need releasing beyond what idle-connection expiry already handles.
func (s *Sink) Close() error {
	return nil
}
