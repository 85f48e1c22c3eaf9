// Package fetch handles remote data acquisition: bulk file downloads,
// query-based API calls, archive extraction and staging-area lifecycle.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kosmylo/geospatial-retrieval/internal/config"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// statusError carries the offending status code while matching
// ErrUnexpectedStatusCode under errors.Is.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func (e *statusError) Is(target error) bool {
	return target == ErrUnexpectedStatusCode
}

const userAgent = "geospatial-retrieval/1.0"

// Client issues HTTP requests with config-driven retry logic.
type Client struct {
	http  *http.Client
	retry *config.RetryPolicy
	log   *logger.Logger
}

// NewClient creates a new client with default retry policy.
func NewClient(log *logger.Logger) *Client {
	return NewClientWithConfig(&config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    500,
		MaxDelayMs:        30000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        300,
	}, log)
}

// NewClientWithConfig creates a new client with a custom retry policy.
func NewClientWithConfig(retry *config.RetryPolicy, log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retry: retry,
		log:   log,
	}
}

// DownloadFile streams the body of a GET request to destPath. The download
// is chunked through an io.Copy, so large archives never reside in memory.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string) error {
	return c.withRetry(rawURL, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{code: resp.StatusCode}
		}

		f, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}

		if _, err := io.Copy(f, resp.Body); err != nil {
			f.Close()
			os.Remove(destPath)

			return fmt.Errorf("failed to write download: %w", err)
		}

		return f.Close()
	})
}

// Get issues a GET request with query parameters and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	var body []byte

	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	err := c.withRetry(rawURL, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)

		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{code: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		return nil
	})

	return body, err
}

// PostForm issues a form-encoded POST request and returns the body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	var body []byte

	err := c.withRetry(rawURL, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{code: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		return nil
	})

	return body, err
}

// withRetry runs fn up to MaxAttempts times, backing off between attempts.
// Non-retryable status codes fail immediately.
func (c *Client) withRetry(rawURL string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if attempt < c.retry.MaxAttempts {
			delay := c.retry.GetRetryDelay(attempt + 1)

			c.log.Debug("retrying request", "url", rawURL, "attempt", attempt, "delay", delay, "error", err)

			if delay > 0 {
				time.Sleep(delay)
			}
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", c.retry.MaxAttempts, lastErr)
}

// isRetryable reports whether an error is worth another attempt: transport
// failures and a small set of temporary status codes.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *statusError
	if !errors.As(err, &se) {
		// Transport-level failure.
		return true
	}

	switch se.code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}

	return false
}
