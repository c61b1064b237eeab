package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/cosmic-weather/internal/common"
	"github.com/i474232898/cosmic-weather/internal/metrics"
	"github.com/i474232898/cosmic-weather/internal/weather"
)

const (
	openWeatherCurrentURL = "https://api.openweathermap.org/data/2.5/weather"
	openWeatherGeoURL     = "https://api.openweathermap.org/geo/1.0/direct"
)

var errMissingKey = errors.New("openweather api key is not configured")

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap's
// current weather endpoint.
type OpenWeatherProvider struct {
	apiKey   string
	baseURL  string
	upstream *common.Upstream
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, m *metrics.Metrics) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:   apiKey,
		baseURL:  openWeatherCurrentURL,
		upstream: common.NewUpstream("openweather", client, m),
	}
}

// WithBaseURL overrides the endpoint, mainly for tests.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.upstream.Name()
}

func (p *OpenWeatherProvider) Current(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, &common.NetworkError{Service: p.Name(), Err: errMissingKey}
	}

	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload struct {
		Name string `json:"name"`
		Dt   int64  `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Pressure  float64 `json:"pressure"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Visibility float64 `json:"visibility"`
		Sys        struct {
			Country string `json:"country"`
		} `json:"sys"`
	}

	if err := p.upstream.GetJSON(ctx, p.baseURL, values, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	snap := weather.Snapshot{
		LocationName: payload.Name,
		CountryCode:  payload.Sys.Country,
		TemperatureC: payload.Main.Temp,
		FeelsLikeC:   payload.Main.FeelsLike,
		HumidityPct:  payload.Main.Humidity,
		PressureHpa:  payload.Main.Pressure,
		WindSpeedMS:  payload.Wind.Speed,
		VisibilityM:  payload.Visibility,
		ObservedAt:   ts,
	}
	if len(payload.Weather) > 0 {
		snap.ConditionMain = weather.Condition(payload.Weather[0].Main)
		snap.ConditionDescription = payload.Weather[0].Description
		snap.Icon = payload.Weather[0].Icon
	}
	return snap, nil
}

// OpenWeatherGeocoder implements weather.Geocoder with OpenWeatherMap's
// direct geocoding endpoint. Results are never cached.
type OpenWeatherGeocoder struct {
	apiKey   string
	baseURL  string
	upstream *common.Upstream
}

func NewOpenWeatherGeocoder(client *http.Client, apiKey string, m *metrics.Metrics) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		apiKey:   apiKey,
		baseURL:  openWeatherGeoURL,
		upstream: common.NewUpstream("openweather-geo", client, m),
	}
}

// WithBaseURL overrides the endpoint, mainly for tests.
func (g *OpenWeatherGeocoder) WithBaseURL(u string) *OpenWeatherGeocoder {
	g.baseURL = u
	return g
}

func (g *OpenWeatherGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, &common.NetworkError{Service: g.upstream.Name(), Err: errMissingKey}
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("limit", "1")
	values.Set("appid", g.apiKey)

	var matches []weather.Coordinates
	if err := g.upstream.GetJSON(ctx, g.baseURL, values, &matches); err != nil {
		return weather.Coordinates{}, err
	}
	if len(matches) == 0 {
		return weather.Coordinates{}, fmt.Errorf("geocode %q: %w", city, weather.ErrNotFound)
	}
	return matches[0], nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
