// Package nightscout talks to a Nightscout-compatible glucose API.
package nightscout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

// Nightscout API constants.
const (
	EntriesPath  = "/api/v1/entries.json"
	SecretHeader = "API-SECRET"
)

// DefaultTimeout bounds a single request. It stays below the 30s poll
// interval so a stalled request is gone before the next tick.
const DefaultTimeout = 20 * time.Second

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 1 << 20

// Client is an HTTP client for the Nightscout entries API.
type Client struct {
	HTTPClient   *http.Client
	MaxBodyBytes int64
}

// NewClient creates a client whose transport negotiates HTTP/2 over TLS and
// health-checks idle HTTP/2 connections.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(),
		},
		MaxBodyBytes: MaxBodyBytes,
	}
}

func newTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	h2, err := http2.ConfigureTransports(t)
	if err != nil {
		// Transport was already configured for h2; HTTP/1.1 still works.
		return t
	}
	h2.ReadIdleTimeout = 30 * time.Second
	h2.PingTimeout = 10 * time.Second
	return t
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// TransportError is returned when no HTTP response was received
// (DNS, connection refused, TLS, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "network request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError describes a response with a status other than 200.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

// EntriesURL builds {base}/api/v1/entries.json?count=1. Any path on base is
// replaced by the entries path.
func EntriesURL(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", errors.New("server URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server URL %q must use http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", base)
	}
	u.Path = EntriesPath
	u.RawPath = ""
	u.RawQuery = url.Values{"count": []string{"1"}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// NewEntriesRequest builds the authenticated GET for the latest entry.
func NewEntriesRequest(ctx context.Context, baseURL, secret string) (*http.Request, error) {
	target, err := EntriesURL(baseURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create entries request: %w", err)
	}
	req.Header.Set(SecretHeader, HashSecret(secret))
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends req and reads the body. Only transport failures are errors;
// non-200 statuses are returned as-is for the caller to classify.
func (c *Client) Do(req *http.Request) (*Response, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = MaxBodyBytes
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
