package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/server"
)

const (
	// DefaultBaseURL reaches a wifid on the local machine
	DefaultBaseURL = "http://127.0.0.1:8590"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// ScanTimeout covers a full hardware scan plus radio bring-up
	ScanTimeout = 20 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second
)

// Client talks to a wifid API server.
type Client struct {
	// BaseURL is the API base (e.g. "http://127.0.0.1:8590")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff
	MaxRetryDelay time.Duration
}

// New creates a client for the given base URL. An empty baseURL targets the
// local daemon.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Ping checks whether the daemon is reachable and responding.
func (c *Client) Ping() error {
	var status server.StatusResponse
	return c.getJSON("/api/v1/status", &status)
}

// Status retrieves the current connectivity status.
func (c *Client) Status() (*server.StatusResponse, error) {
	var status server.StatusResponse
	if err := c.withRetry(func() error {
		return c.getJSON("/api/v1/status", &status)
	}); err != nil {
		return nil, err
	}
	return &status, nil
}

// Scan runs a network scan and returns the visible networks. Scans take
// seconds; the call uses a longer timeout than other requests and is not
// retried (a second scan would just repeat the wait).
func (c *Client) Scan() (*server.ScanResponse, error) {
	httpClient := &http.Client{Timeout: ScanTimeout}

	resp, err := httpClient.Get(c.BaseURL + "/api/v1/scan")
	if err != nil {
		return nil, classifyNetworkError("scan request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	var scan server.ScanResponse
	if err := json.NewDecoder(resp.Body).Decode(&scan); err != nil {
		return nil, newParseError("failed to parse scan response", err)
	}
	return &scan, nil
}

// SetStation applies a station configuration.
func (c *Client) SetStation(sta *config.Station) error {
	return c.withRetry(func() error {
		return c.putJSON("/api/v1/config/station", sta)
	})
}

// SetAccessPoint applies an access point configuration.
func (c *Client) SetAccessPoint(ap *config.AccessPoint) error {
	return c.withRetry(func() error {
		return c.putJSON("/api/v1/config/ap", ap)
	})
}

// withRetry runs fn with exponential backoff on retryable failures.
func (c *Client) withRetry(fn func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)
			currentDelay *= 2
			if currentDelay > c.MaxRetryDelay {
				currentDelay = c.MaxRetryDelay
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return classifyNetworkError("GET "+path+" failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newParseError("failed to parse response", err)
	}
	return nil
}

func (c *Client) putJSON(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return newParseError("failed to encode request", err)
	}

	req, err := http.NewRequest(http.MethodPut, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return classifyNetworkError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return classifyNetworkError("PUT "+path+" failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// responseError turns a non-200 response into an APIError, preferring the
// daemon's own error message when the body carries one.
func (c *Client) responseError(resp *http.Response) error {
	message := fmt.Sprintf("unexpected status code: %d", resp.StatusCode)

	var body server.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		message = body.Error
	}
	return newHTTPError(resp.StatusCode, message)
}
