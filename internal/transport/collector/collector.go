// Package collector delivers notice payloads to the error-tracking
// collector over HTTP.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/redleaf-labs/hopper/internal/metrics"
	"github.com/redleaf-labs/hopper/internal/payload"
)

const (
	noticesPath    = "/v3/notices"
	apiKeyHeader   = "X-API-Key"
	defaultTimeout = 5 * time.Second
	maxRetries     = 3
)

// Option configures a collector Transport.
type Option func(*Transport)

// WithTimeout sets the HTTP client timeout. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) { t.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.client = c }
}

// WithLogger sets the diagnostic logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// Transport POSTs one JSON-encoded notice per request, authenticated with
// the project API key. Server errors and throttling are retried with
// exponential backoff; client errors are not.
type Transport struct {
	client   *http.Client
	logger   *zap.Logger
	endpoint string
	apiKey   string
}

// New creates a collector transport for the given endpoint and API key.
func New(endpoint, apiKey string, opts ...Option) (*Transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("collector: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("collector: endpoint must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("collector: endpoint must include a host")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("collector: api key is required")
	}

	t := &Transport{
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   zap.NewNop(),
		endpoint: u.JoinPath(noticesPath).String(),
		apiKey:   apiKey,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Send posts the payload, retrying on 5xx and 429 with exponential
// backoff. The context bounds the whole attempt sequence.
func (t *Transport) Send(ctx context.Context, p payload.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("collector: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			t.logger.Debug("retrying notice delivery",
				zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		retryable, err := t.post(ctx, body)
		if err == nil {
			metrics.DeliverySucceeded()
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	metrics.DeliveryFailed()
	t.logger.Warn("notice delivery failed", zap.Error(lastErr))
	return lastErr
}

// Close is a no-op; the transport holds no buffered state.
func (t *Transport) Close() error {
	return nil
}

// post performs one delivery attempt and reports whether a failure is
// worth retrying.
func (t *Transport) post(ctx context.Context, body []byte) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("collector: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		// Network failures are transient until proven otherwise.
		return true, fmt.Errorf("collector: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("collector: HTTP %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("collector: HTTP %d", resp.StatusCode)
	}
}
