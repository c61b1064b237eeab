package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/i474232898/cosmic-weather/internal/metrics"
)

const userAgent = "cosmic-weather/0.1"

// The breaker only opens under sustained failure, such as a burst of API
// calls against a dead service. Occasional failed fetches never trip it.
const (
	breakerMinRequests  = 20
	breakerFailureRatio = 0.9
	breakerOpenTimeout  = 10 * time.Second
)

var (
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoClient    = errors.New("http client not configured")
)

// NetworkError reports a transport failure or a non-success response from an
// upstream service.
type NetworkError struct {
	Service    string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Upstream executes GET requests against one third-party service. Requests
// are never retried; the circuit breaker only fails fast while the service is
// known to be down.
type Upstream struct {
	name    string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewUpstream builds an Upstream named after the service it talks to.
func NewUpstream(name string, client *http.Client, m *metrics.Metrics) *Upstream {
	// Timeout is short enough that a user's manual retry reaches a recovered
	// service.
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  1,
		Interval:     1 * time.Minute,
		Timeout:      breakerOpenTimeout,
		ReadyToTrip:  readyToTrip,
		IsSuccessful: isSuccessful,
	})

	return &Upstream{
		name:    name,
		client:  client,
		circuit: cb,
		metrics: m,
	}
}

func readyToTrip(c gobreaker.Counts) bool {
	if c.Requests < breakerMinRequests {
		return false
	}
	return float64(c.TotalFailures)/float64(c.Requests) >= breakerFailureRatio
}

// isSuccessful reports whether err leaves the service's health untouched.
// Client errors (bad date, bad key) say nothing about the upstream.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode >= 400 && ne.StatusCode < 500
	}
	return false
}

// Name returns the service name used in errors and metrics.
func (u *Upstream) Name() string {
	return u.name
}

// GetJSON issues a GET to baseURL with the given query and decodes the JSON
// body into out. Any failure is returned as *NetworkError.
func (u *Upstream) GetJSON(ctx context.Context, baseURL string, values url.Values, out any) error {
	if u.client == nil {
		return &NetworkError{Service: u.name, Err: errNoClient}
	}

	target := baseURL
	if len(values) > 0 {
		target = fmt.Sprintf("%s?%s", baseURL, values.Encode())
	}

	var callErr error
	_, err := u.circuit.Execute(func() (interface{}, error) {
		callErr = u.do(ctx, target, out)
		if callErr != nil && ctx.Err() != nil {
			// The caller gave up; not the service's fault.
			return nil, nil
		}
		return nil, callErr
	})
	if err == nil {
		err = callErr
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &NetworkError{Service: u.name, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne
	}
	return &NetworkError{Service: u.name, Err: err}
}

func (u *Upstream) do(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &NetworkError{Service: u.name, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		u.metrics.ObserveUpstream(u.name, 0, time.Since(start))
		return &NetworkError{Service: u.name, Err: err}
	}
	defer resp.Body.Close()
	u.metrics.ObserveUpstream(u.name, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{
			Service:    u.name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", errUnexpected, readSnippet(resp.Body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Service: u.name, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readSnippet returns the start of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "empty body"
	}
	return s
}
