package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/graphrender/pkg/observability"
)

// Defaults for [Client].
const (
	DefaultTimeout  = 5 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
	DefaultMaxDelay = 2 * time.Second
	MaxBodySize     = 1 << 20
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrStatus is returned for other unexpected status codes.
	ErrStatus = errors.New("unexpected status")

	// ErrTooLarge is returned when a body exceeds MaxBodySize.
	ErrTooLarge = errors.New("response too large")
)

// Client performs GET requests with default headers and retries.
type Client struct {
	http    *http.Client
	headers map[string]string
	backoff Backoff
}

// NewClient creates a Client whose requests carry headers.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(DefaultTimeout),
		headers: headers,
		backoff: DefaultBackoff(),
	}
}

// NewHTTPClient creates an HTTP client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// WithHTTPClient replaces the underlying transport client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithRetry overrides the number of attempts and the initial delay. The
// delay cap is kept.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	c.backoff.Attempts, c.backoff.Delay = attempts, delay
	return c
}

// GetBytes fetches url and returns its body, retrying transient failures.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := c.backoff.Do(ctx, func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(io.LimitReader(body, MaxBodySize+1))
		if err != nil {
			return Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
		}
		if len(data) > MaxBodySize {
			return fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, MaxBodySize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: %d", ErrStatus, code)
	}
}
