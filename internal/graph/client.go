// Package graph is a minimal client for the Microsoft Graph REST API,
// covering the handful of read-only endpoints the audit pipeline needs.
package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://graph.microsoft.com"

// APIError is a non-2xx response from the directory service.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e APIError) Error() string {
	return fmt.Sprintf("graph api error: %s '%s' (status %d, request: %s)",
		e.Code, e.Message, e.Status, e.RequestID)
}

type errorResponse struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError struct {
			RequestID string `json:"request-id"`
		} `json:"innerError"`
	} `json:"error"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	ts         oauth2.TokenSource
	limiter    *rate.Limiter
	timeout    time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout bounds each API call. Expiry surfaces as a transport error.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func New(ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		ts:         ts,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, rawURL string, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.ts != nil {
		tok, err := c.ts.Token()
		if err != nil {
			return fmt.Errorf("acquiring token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// GetObject fetches a single-object endpoint such as /me or /users/{id}.
func (c *Client) GetObject(ctx context.Context, rawURL string, out any) error {
	return c.get(ctx, rawURL, out)
}

func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %d and unreadable body: %w", resp.StatusCode, err)
	}
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Code != "" {
		return APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Error.Code,
			Message:   errResp.Error.Message,
			RequestID: errResp.Error.InnerError.RequestID,
		}
	}
	return fmt.Errorf("graph api error: *unparsed '%s' (status %d)", string(body), resp.StatusCode)
}
