// Package ipapi provides an IP-geolocation Source for the location
// resolver. It stands in for a platform positioning API: coarse, no
// hardware fix, but good enough to parameterize data fetches.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/airlens/airlens/internal/location"
	"github.com/airlens/airlens/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the ip-api geolocation service.
	DefaultBaseURL = "http://ip-api.com"

	// ProviderName identifies this source.
	ProviderName = "ipapi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the ipapi source.
type ClientConfig struct {
	// BaseURL is the service base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default
	// resilient client is created.
	HTTPClient HTTPDoer

	// Allowed mirrors the platform permission model: when false the
	// source refuses with location.ErrPermissionDenied and performs
	// no network call.
	Allowed bool

	// Timeout per request when the default client is used (10s).
	Timeout time.Duration
}

// Client is an ip-api geolocation source.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	allowed    bool

	mu      sync.Mutex
	lastFix *location.Fix
}

// NewClient creates a new ipapi source.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		allowed:    cfg.Allowed,
	}
}

type geoResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition resolves the caller's position from their public IP.
// A previously obtained fix within opts.MaxAge is returned without a
// network call.
func (c *Client) CurrentPosition(ctx context.Context, opts location.Options) (location.Fix, error) {
	if !c.allowed {
		return location.Fix{}, location.ErrPermissionDenied
	}

	if fix, ok := c.cachedFix(opts.MaxAge); ok {
		return fix, nil
	}

	url := c.baseURL + "/json?fields=status,message,lat,lon"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return location.Fix{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return location.Fix{}, ctx.Err()
		}
		return location.Fix{}, fmt.Errorf("%w: %w", location.ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return location.Fix{}, fmt.Errorf("%w: unexpected status %d", location.ErrPositionUnavailable, resp.StatusCode)
	}

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return location.Fix{}, fmt.Errorf("%w: decode response: %w", location.ErrPositionUnavailable, err)
	}
	if geo.Status != "success" {
		return location.Fix{}, fmt.Errorf("%w: %s", location.ErrPositionUnavailable, geo.Message)
	}

	fix := location.Fix{
		Position:   location.Position{Latitude: geo.Lat, Longitude: geo.Lon},
		ObtainedAt: time.Now(),
	}

	c.mu.Lock()
	c.lastFix = &fix
	c.mu.Unlock()

	return fix, nil
}

func (c *Client) cachedFix(maxAge time.Duration) (location.Fix, bool) {
	if maxAge <= 0 {
		return location.Fix{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFix == nil || time.Since(c.lastFix.ObtainedAt) > maxAge {
		return location.Fix{}, false
	}
	return *c.lastFix, true
}
