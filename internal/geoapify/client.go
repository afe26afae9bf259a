// Package geoapify hosts the clients for the three Geoapify APIs the planner
// consumes: forward geocoding, the route-planner optimizer, and the detailed
// routing engine. One Client serves all three; each call carries its own
// timeout and bounded retry on transient failures.
package geoapify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/anokye0712/ai-route-planner/common/retry"
)

const (
	defaultBaseURL = "https://api.geoapify.com"

	geocodeTimeout   = 10 * time.Second
	routingTimeout   = 30 * time.Second
	optimizerTimeout = 120 * time.Second
)

// Config configures the Geoapify client. HTTPClient and Retry are optional;
// Retry overrides the backoff schedule only, the transience predicate is
// fixed (429, 5xx, network errors).
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      *retry.Policy
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("geoapify API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Timeouts are applied per call; the client itself has none.
		httpClient = &http.Client{}
	}

	policy := retry.Default(transient)
	if cfg.Retry != nil {
		policy = *cfg.Retry
		policy.Retryable = transient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		retry:      policy,
	}, nil
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("geoapify returned %d: %s", e.Code, e.Body)
}

// transient reports whether an error is worth retrying: rate limiting,
// server-side failures, and network errors. Other statuses (bad request,
// auth) will not improve on retry.
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close() //nolint:errcheck
		return nil, &statusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry builds a fresh request per attempt (POST bodies cannot be
// replayed from a consumed reader) and retries transient failures.
func (c *Client) doWithRetry(ctx context.Context, makeReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		req, err := makeReq(ctx)
		if err != nil {
			return err
		}
		r, err := c.do(req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}
