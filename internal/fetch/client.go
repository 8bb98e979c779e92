// Package fetch provides the rate-limited, retrying HTTP client used to
// download discount feeds from chain endpoints.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Config holds rate limiting and retry settings for feed downloads.
type Config struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns conservative defaults: chain endpoints throttle
// aggressively and a feed download is never latency-critical.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		Burst:             2,
		MaxRetries:        3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		Timeout:           30 * time.Second,
	}
}

// Client downloads feed files with rate limiting and retry on transient
// failures.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// NewClient creates a new feed download client.
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:     config,
		logger:     log.With().Str("component", "feed_fetcher").Logger(),
	}
}

// Get downloads url and returns the response body. Transient failures
// (network errors, 429, 5xx) are retried with exponential backoff up to
// MaxRetries; other statuses fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, status, err := c.doOnce(ctx, url)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		lastStatus = status
		lastErr = err

		if status != 0 && !isRetryableStatus(status) {
			return nil, &RetryError{URL: url, Attempts: attempt + 1, LastStatus: status, Err: err}
		}

		if attempt < c.config.MaxRetries {
			backoff := c.backoff(attempt)
			c.logger.Warn().
				Str("url", url).
				Int("attempt", attempt+1).
				Int("status", status).
				Dur("backoff", backoff).
				Err(err).
				Msg("Feed download failed, retrying")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, &RetryError{
		URL:        url,
		Attempts:   c.config.MaxRetries + 1,
		LastStatus: lastStatus,
		Err:        lastErr,
	}
}

func (c *Client) doOnce(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "Handlekurv-DealService/1.0")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// backoff doubles the initial backoff per attempt, capped at MaxBackoff.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.config.InitialBackoff << uint(attempt)
	if d > c.config.MaxBackoff || d <= 0 {
		return c.config.MaxBackoff
	}
	return d
}

// isRetryableStatus reports whether a download is worth retrying.
func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= 500 && status != http.StatusNotImplemented
}

// RetryError is returned when a download keeps failing after all retries or
// hits a non-retryable status.
type RetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	Err        error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts (last status %d): %v",
		e.URL, e.Attempts, e.LastStatus, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}
