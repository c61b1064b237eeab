package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/cosmic-weather/internal/common"
	"github.com/i474232898/cosmic-weather/internal/metrics"
	"github.com/i474232898/cosmic-weather/internal/weather"
)

const (
	DefaultIPLocateURL = "http://ip-api.com/json/"

	// City-level fix; IP lookups cannot do better whatever is requested.
	ipAccuracyMeters = 5000
)

// IPLocator implements weather.Locator against an ip-api.com compatible
// endpoint. Every call performs a fresh lookup.
type IPLocator struct {
	baseURL  string
	upstream *common.Upstream
}

func NewIPLocator(client *http.Client, baseURL string, m *metrics.Metrics) *IPLocator {
	if baseURL == "" {
		baseURL = DefaultIPLocateURL
	}
	return &IPLocator{
		baseURL:  baseURL,
		upstream: common.NewUpstream("geolocation", client, m),
	}
}

func (l *IPLocator) Locate(ctx context.Context, _ weather.LocateOptions) (weather.Position, error) {
	values := url.Values{}
	values.Set("fields", "status,message,lat,lon")

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}

	if err := l.upstream.GetJSON(ctx, l.baseURL, values, &payload); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return weather.Position{}, ctxErr
		}
		var ne *common.NetworkError
		if errors.As(err, &ne) && ne.StatusCode == http.StatusForbidden {
			return weather.Position{}, fmt.Errorf("%w: %v", weather.ErrPermissionDenied, err)
		}
		return weather.Position{}, fmt.Errorf("%w: %v", weather.ErrPositionUnavailable, err)
	}

	if payload.Status != "success" {
		return weather.Position{}, fmt.Errorf("%w: %s", weather.ErrPositionUnavailable, payload.Message)
	}

	return weather.Position{
		Latitude:  payload.Lat,
		Longitude: payload.Lon,
		AccuracyM: ipAccuracyMeters,
	}, nil
}
