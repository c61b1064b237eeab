package astronomy

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/cosmic-weather/internal/common"
	"github.com/i474232898/cosmic-weather/internal/metrics"
)

const (
	defaultBaseURL = "https://api.nasa.gov/planetary/apod"
	// DemoKey is NASA's shared, rate-limited public key.
	DemoKey = "DEMO_KEY"
)

// Client talks to the APOD endpoint. It holds no state between calls.
type Client struct {
	apiKey   string
	baseURL  string
	upstream *common.Upstream
}

// NewClient builds a Client. An empty apiKey falls back to DemoKey.
func NewClient(client *http.Client, apiKey string, m *metrics.Metrics) *Client {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = DemoKey
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		upstream: common.NewUpstream("apod", client, m),
	}
}

// WithBaseURL overrides the endpoint, mainly for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// FetchToday returns the current day's entry as decided by the service.
func (c *Client) FetchToday(ctx context.Context) (Record, error) {
	return c.fetch(ctx, "")
}

// FetchByDate returns the entry for date (YYYY-MM-DD). The date is passed
// through unchecked; the service rejects invalid values.
func (c *Client) FetchByDate(ctx context.Context, date string) (Record, error) {
	return c.fetch(ctx, date)
}

func (c *Client) fetch(ctx context.Context, date string) (Record, error) {
	values := url.Values{}
	values.Set("api_key", c.apiKey)
	if date != "" {
		values.Set("date", date)
	}

	var rec Record
	if err := c.upstream.GetJSON(ctx, c.baseURL, values, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
