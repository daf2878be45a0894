package pingapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Sample request: curl http://localhost:8080/api/ping
const (
	defaultPingURL = "http://localhost:8080/api/ping"
)

// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status")

type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every request; zero keeps requests unbounded. The
// bound is applied per request, so a shared http.Client is left untouched.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a client for the ping endpoint at pingURL. An empty
// pingURL points at a locally running API server.
func NewClient(pingURL string, opts ...ClientOption) (*Client, error) {
	if pingURL == "" {
		pingURL = defaultPingURL
	}

	u, err := url.Parse(pingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ping URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported ping URL scheme %q", u.Scheme)
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    u.String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint the client pings
func (c *Client) URL() string {
	return c.baseURL
}

// Ping issues one GET and waits for the full response. The body carries no
// meaning and is discarded.
func (c *Client) Ping(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Make the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}
