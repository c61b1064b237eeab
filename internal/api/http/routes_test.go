package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cosmic-weather/internal/astronomy"
	"github.com/i474232898/cosmic-weather/internal/metrics"
	"github.com/i474232898/cosmic-weather/internal/prefs"
	"github.com/i474232898/cosmic-weather/internal/store"
)

type fakeState struct {
	mu           sync.Mutex
	state        store.State
	astroLoads   int
	weatherLoads []string
	favErr       error
	themeErr     error
}

func (f *fakeState) Snapshot() store.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeState) LoadAstronomy(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.astroLoads++
	f.state.Astronomy = &astronomy.Record{Date: "2024-01-15", Title: "Orion"}
}

func (f *fakeState) LoadWeather(_ context.Context, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weatherLoads = append(f.weatherLoads, name)
	f.state.City = name
}

func (f *fakeState) SetCity(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.City = name
}

func (f *fakeState) ToggleFavorite(_ context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favErr != nil {
		return f.favErr
	}
	f.state.Favorites = append(f.state.Favorites, date)
	return nil
}

func (f *fakeState) ToggleTheme(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.themeErr != nil {
		return f.themeErr
	}
	f.state.Theme = f.state.Theme.Toggle()
	return nil
}

type fakeArchive struct {
	dates []string
	err   error
}

func (a *fakeArchive) FetchByDate(_ context.Context, date string) (astronomy.Record, error) {
	a.dates = append(a.dates, date)
	if a.err != nil {
		return astronomy.Record{}, a.err
	}
	return astronomy.Record{Date: date, Title: "Archived"}, nil
}

func newTestApp(t *testing.T, st *fakeState, archive *fakeArchive) *fiber.App {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncAction(store.SourceWeather, "success")

	app := NewApp(io.Discard)
	RegisterRoutes(app, st, archive, reg, zerolog.Nop())
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &fakeState{}, &fakeArchive{})

	resp, body := do(t, app, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestState(t *testing.T) {
	st := &fakeState{state: store.State{City: "Jaipur", Theme: prefs.ThemeDark, Favorites: []string{"2024-01-01"}}}
	app := newTestApp(t, st, &fakeArchive{})

	resp, body := do(t, app, http.MethodGet, "/api/v1/state", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jaipur", body["city"])
	assert.Equal(t, "dark", body["theme"])
	assert.Equal(t, []any{"2024-01-01"}, body["favorites"])
}

func TestAstronomyRefresh(t *testing.T) {
	st := &fakeState{}
	app := newTestApp(t, st, &fakeArchive{})

	resp, body := do(t, app, http.MethodPost, "/api/v1/astronomy/refresh", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, st.astroLoads)
	rec, ok := body["astronomy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Orion", rec["title"])
}

func TestAstronomyByDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		archive := &fakeArchive{}
		app := newTestApp(t, &fakeState{}, archive)

		resp, body := do(t, app, http.MethodGet, "/api/v1/astronomy?date=2023-07-04", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2023-07-04", body["date"])
		assert.Equal(t, []string{"2023-07-04"}, archive.dates)
	})

	t.Run("invalid date", func(t *testing.T) {
		for _, q := range []string{"", "?date=yesterday", "?date=2023-13-01", "?date=2023-7-4"} {
			archive := &fakeArchive{}
			app := newTestApp(t, &fakeState{}, archive)

			resp, body := do(t, app, http.MethodGet, "/api/v1/astronomy"+q, "")

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
			assert.Equal(t, true, body["error"])
			assert.Empty(t, archive.dates)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		app := newTestApp(t, &fakeState{}, &fakeArchive{err: errors.New("503 from apod")})

		resp, body := do(t, app, http.MethodGet, "/api/v1/astronomy?date=2023-07-04", "")

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.NotContains(t, body["message"], "503")
	})
}

func TestWeatherRefresh(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "no body uses device location", body: "", want: ""},
		{name: "no city uses device location", body: `{}`, want: ""},
		{name: "city is trimmed", body: `{"city":"  Oslo "}`, want: "Oslo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeState{}
			app := newTestApp(t, st, &fakeArchive{})

			resp, _ := do(t, app, http.MethodPost, "/api/v1/weather/refresh", tc.body)

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, []string{tc.want}, st.weatherLoads)
		})
	}
}

func TestWeatherRefresh_RejectsBadInput(t *testing.T) {
	for _, body := range []string{`{"city":"   "}`, `{"city":`} {
		st := &fakeState{}
		app := newTestApp(t, st, &fakeArchive{})

		resp, _ := do(t, app, http.MethodPost, "/api/v1/weather/refresh", body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Empty(t, st.weatherLoads)
	}
}

func TestSetCity(t *testing.T) {
	st := &fakeState{}
	app := newTestApp(t, st, &fakeArchive{})

	resp, body := do(t, app, http.MethodPut, "/api/v1/city", `{"city":" Lima "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lima", body["city"])

	resp, _ = do(t, app, http.MethodPut, "/api/v1/city", `{"city":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Lima", st.Snapshot().City)
}

func TestToggleFavorite(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		st := &fakeState{}
		app := newTestApp(t, st, &fakeArchive{})

		resp, body := do(t, app, http.MethodPost, "/api/v1/favorites/2024-01-15/toggle", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []any{"2024-01-15"}, body["favorites"])
	})

	t.Run("invalid date", func(t *testing.T) {
		st := &fakeState{}
		app := newTestApp(t, st, &fakeArchive{})

		resp, _ := do(t, app, http.MethodPost, "/api/v1/favorites/not-a-date/toggle", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, st.Snapshot().Favorites)
	})

	t.Run("persist failure", func(t *testing.T) {
		st := &fakeState{favErr: errors.New("disk full")}
		app := newTestApp(t, st, &fakeArchive{})

		resp, body := do(t, app, http.MethodPost, "/api/v1/favorites/2024-01-15/toggle", "")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "failed to save favorites", body["message"])
	})
}

func TestToggleTheme(t *testing.T) {
	st := &fakeState{state: store.State{Theme: prefs.ThemeDark}}
	app := newTestApp(t, st, &fakeArchive{})

	resp, body := do(t, app, http.MethodPost, "/api/v1/theme/toggle", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "light", body["theme"])

	st.themeErr = errors.New("locked")
	resp, _ = do(t, app, http.MethodPost, "/api/v1/theme/toggle", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	app := newTestApp(t, &fakeState{}, &fakeArchive{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "cosmic_weather_store_actions_total")
}
