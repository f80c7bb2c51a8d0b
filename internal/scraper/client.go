package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "twxcli/internal/errors"
	"twxcli/internal/infrastructure"
)

// ClientConfig configures the outbound HTTP client.
type ClientConfig struct {
	Timeout        time.Duration
	UserAgent      string
	RequestsPerSec float64
	Burst          int
	MaxRetries     int
	RetryBaseDelay time.Duration
	MaxBodyBytes   int64
}

// DefaultClientConfig returns conservative settings; the exchanges throttle
// aggressive clients.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        30 * time.Second,
		UserAgent:      "twxcli/1.0",
		RequestsPerSec: 2,
		Burst:          1,
		MaxRetries:     2,
		RetryBaseDelay: time.Second,
		MaxBodyBytes:   32 << 20,
	}
}

// Client is a rate-limited HTTP client shared by every report fetch.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client. A nil logger falls back to slog.Default().
func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultClientConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RequestsPerSec <= 0 {
		config.RequestsPerSec = defaults.RequestsPerSec
	}
	if config.Burst <= 0 {
		config.Burst = defaults.Burst
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst),
		logger:  infrastructure.WithComponent(logger, "scraper"),
	}
}

// Get issues a GET request with the query parameters and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	target := rawURL
	if len(query) > 0 {
		target = rawURL + "?" + query.Encode()
	}
	return c.doWithRetry(ctx, http.MethodGet, target, nil, "")
}

// PostForm issues a form-encoded POST request and returns the body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	return c.doWithRetry(ctx, http.MethodPost, rawURL, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

func (c *Client) doWithRetry(ctx context.Context, method, target string, body []byte, contentType string) ([]byte, error) {
	var lastErr error
	backoff := c.config.RetryBaseDelay

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
			}
			c.logger.WarnContext(ctx, "Retrying request",
				slog.String("url", target),
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()))
		}

		data, retryable, err := c.do(ctx, method, target, body, contentType)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// do performs a single request. The bool reports whether the failure is worth retrying.
func (c *Client) do(ctx context.Context, method, target string, body []byte, contentType string) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, false, apperrors.NewNetworkError("failed to create request", err).WithContext("url", target)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "*/*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, apperrors.NewNetworkError("request failed", err).WithContext("url", target)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, true, apperrors.NewNetworkError("failed to read response", err).WithContext("url", target)
	}

	c.logger.DebugContext(ctx, "Fetched",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperrors.NewNetworkError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
			WithContext("url", target).
			WithContext("status", resp.StatusCode)
		return nil, resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests, appErr
	}

	return data, false, nil
}

// looksLikeHTML reports whether a body that should be CSV or JSON is an
// HTML page, which the exchanges serve for maintenance and error screens.
func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
