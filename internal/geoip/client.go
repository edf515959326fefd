// Package geoip looks up the location of a source address against an
// ipapi-compatible HTTP endpoint.
package geoip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/sap8899/reportly/internal/core"
)

const DefaultBaseURL = "https://ipapi.co"

type Client struct {
	httpClient *http.Client
	baseURL    string
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

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupResponse struct {
	City        string `json:"city"`
	Region      string `json:"region"`
	CountryName string `json:"country_name"`
}

// Lookup resolves an address to its city/region/country. Fields the
// provider does not know stay empty; a transport or decode failure is
// returned for the caller to degrade on.
func (c *Client) Lookup(ctx context.Context, ip string) (core.GeoInfo, error) {
	reqURL := fmt.Sprintf("%s/%s/json/", c.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return core.GeoInfo{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.GeoInfo{}, fmt.Errorf("looking up %s: %w", ip, err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return core.GeoInfo{}, fmt.Errorf("looking up %s: status %d", ip, resp.StatusCode)
	}

	var lr lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return core.GeoInfo{}, fmt.Errorf("decoding lookup for %s: %w", ip, err)
	}
	return core.GeoInfo{
		City:    lr.City,
		Region:  lr.Region,
		Country: lr.CountryName,
	}, nil
}
