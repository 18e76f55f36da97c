// Package mapbox implements the Geocoder and RouteProvider ports against the
// Mapbox geocoding and directions APIs.
package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"location-distance-service/internal/ports"
)

// Client talks to the Mapbox HTTP APIs. Credentials and base URL are
// injected at construction so tests can point it at a stub server.
//
// An empty token is allowed at construction; calls then fail with
// ports.ErrMissingConfiguration so batch callers see a typed error instead
// of a startup crash. SetToken must not race with in-flight calls.
type Client struct {
	session *http.Client
	token   string
	baseURL string
	profile string
	country string
}

type Option func(*Client)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry sets the geocoding country filter (default "us").
func WithCountry(code string) Option {
	return func(c *Client) { c.country = strings.ToLower(code) }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.session = h }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		token:   strings.TrimSpace(token),
		baseURL: "https://api.mapbox.com",
		profile: "mapbox/driving",
		country: "us",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the credential at runtime. Callers holding a client built
// before the token was configured do not need a new instance.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

func (c *Client) configured() error {
	if c.token == "" {
		return ports.ErrMissingConfiguration
	}
	return nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("access_token", c.token)
	req.URL.RawQuery = q.Encode()

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429, 5xx) using
// exponential backoff while respecting context cancellation. Permanent 4xx
// responses are returned immediately.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
