package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordCall struct{ lat, lon float64 }

type fakeProvider struct {
	mu    sync.Mutex
	calls []coordCall
	// fail returns an error for the given coordinates when set.
	fail func(lat, lon float64) error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(_ context.Context, lat, lon float64) (Snapshot, error) {
	p.mu.Lock()
	p.calls = append(p.calls, coordCall{lat, lon})
	p.mu.Unlock()

	if p.fail != nil {
		if err := p.fail(lat, lon); err != nil {
			return Snapshot{}, err
		}
	}
	return Snapshot{LocationName: "at-coords", TemperatureC: lat}, nil
}

type fakeGeocoder struct {
	results map[string]Coordinates
	err     error
	calls   []string
}

func (g *fakeGeocoder) Resolve(_ context.Context, city string) (Coordinates, error) {
	g.calls = append(g.calls, city)
	if g.err != nil {
		return Coordinates{}, g.err
	}
	c, ok := g.results[city]
	if !ok {
		return Coordinates{}, ErrNotFound
	}
	return c, nil
}

type fakeLocator struct {
	pos      Position
	err      error
	gotOpts  LocateOptions
	deadline bool
}

func (l *fakeLocator) Locate(ctx context.Context, opts LocateOptions) (Position, error) {
	l.gotOpts = opts
	_, l.deadline = ctx.Deadline()
	return l.pos, l.err
}

var jaipur = Coordinates{Latitude: 26.91, Longitude: 75.78, ResolvedName: "Jaipur", CountryCode: "IN"}

func newService(p *fakeProvider, g *fakeGeocoder, l Locator) *Service {
	return NewService(p, g, l, "Jaipur", zerolog.Nop())
}

func TestFetchByCity_GeocodesThenFetches(t *testing.T) {
	p := &fakeProvider{}
	g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}

	snap, err := newService(p, g, nil).FetchByCity(context.Background(), "  Jaipur ")
	require.NoError(t, err)

	assert.Equal(t, []string{"Jaipur"}, g.calls)
	assert.Equal(t, []coordCall{{26.91, 75.78}}, p.calls)
	assert.Equal(t, 26.91, snap.TemperatureC)
}

func TestFetchByCity_BlankNameMakesNoCalls(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		p := &fakeProvider{}
		g := &fakeGeocoder{}

		_, err := newService(p, g, nil).FetchByCity(context.Background(), name)

		assert.ErrorIs(t, err, ErrEmptyLocation)
		assert.Empty(t, g.calls)
		assert.Empty(t, p.calls)
	}
}

func TestFetchByCity_NotFoundIsClassified(t *testing.T) {
	g := &fakeGeocoder{results: map[string]Coordinates{}}

	_, err := newService(&fakeProvider{}, g, nil).FetchByCity(context.Background(), "Nonexistentville")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrFetchFailed)
}

func TestFetchByCity_OtherFailuresCollapse(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")

	t.Run("geocoding", func(t *testing.T) {
		g := &fakeGeocoder{err: transport}
		_, err := newService(&fakeProvider{}, g, nil).FetchByCity(context.Background(), "Jaipur")

		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.NotErrorIs(t, err, transport)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("weather", func(t *testing.T) {
		p := &fakeProvider{fail: func(_, _ float64) error { return transport }}
		g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}
		_, err := newService(p, g, nil).FetchByCity(context.Background(), "Jaipur")

		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.NotErrorIs(t, err, transport)
	})
}

func TestFetchLocal_NoLocatorUsesDefaultCityOnly(t *testing.T) {
	p := &fakeProvider{}
	g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}

	_, err := newService(p, g, nil).FetchLocal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Jaipur"}, g.calls)
	// Only the default city's coordinates were ever looked up.
	assert.Equal(t, []coordCall{{jaipur.Latitude, jaipur.Longitude}}, p.calls)
}

func TestFetchLocal_UsesPositionWhenAvailable(t *testing.T) {
	p := &fakeProvider{}
	g := &fakeGeocoder{}
	l := &fakeLocator{pos: Position{Latitude: 48.85, Longitude: 2.35}}

	snap, err := newService(p, g, l).FetchLocal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 48.85, snap.TemperatureC)
	assert.Empty(t, g.calls)
	assert.True(t, l.gotOpts.HighAccuracy)
	assert.Equal(t, GeolocationTimeout, l.gotOpts.Timeout)
	assert.Zero(t, l.gotOpts.MaxAge)
	assert.True(t, l.deadline, "geolocation must be bounded by a deadline")
}

func TestFetchLocal_CoordinateFailureFallsBack(t *testing.T) {
	p := &fakeProvider{fail: func(lat, _ float64) error {
		if lat == 48.85 {
			return errors.New("boom")
		}
		return nil
	}}
	g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}
	l := &fakeLocator{pos: Position{Latitude: 48.85, Longitude: 2.35}}

	snap, err := newService(p, g, l).FetchLocal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, jaipur.Latitude, snap.TemperatureC)
	assert.Len(t, p.calls, 2)
	assert.Equal(t, []string{"Jaipur"}, g.calls)
}

func TestFetchLocal_CoordinateAndFallbackFailureIsTerminal(t *testing.T) {
	p := &fakeProvider{fail: func(_, _ float64) error { return errors.New("boom") }}
	g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}
	l := &fakeLocator{pos: Position{Latitude: 1, Longitude: 2}}

	_, err := newService(p, g, l).FetchLocal(context.Background())

	require.ErrorIs(t, err, ErrWeatherUnavailable)
	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, msgTryLater, ue.Message)
	assert.False(t, ue.NeedsManualEntry())
}

func TestFetchLocal_GeolocationFailureFallsBack(t *testing.T) {
	for _, locErr := range []error{ErrPermissionDenied, ErrPositionUnavailable, context.DeadlineExceeded} {
		p := &fakeProvider{}
		g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}
		l := &fakeLocator{err: locErr}

		_, err := newService(p, g, l).FetchLocal(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Jaipur"}, g.calls)
	}
}

func TestFetchLocal_GeolocationAndFallbackFailureAsksForManualEntry(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("offline")}
	l := &fakeLocator{err: ErrPermissionDenied}

	_, err := newService(&fakeProvider{}, g, l).FetchLocal(context.Background())

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.NeedsManualEntry())
	assert.Equal(t, msgEnterManual, err.Error())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestFetchLocal_SlowLocatorTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the geolocation timeout")
	}
	g := &fakeGeocoder{results: map[string]Coordinates{"Jaipur": jaipur}}
	l := blockingLocator{}

	start := time.Now()
	_, err := newService(&fakeProvider{}, g, l).FetchLocal(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), GeolocationTimeout)
	assert.Equal(t, []string{"Jaipur"}, g.calls)
}

type blockingLocator struct{}

func (blockingLocator) Locate(ctx context.Context, _ LocateOptions) (Position, error) {
	<-ctx.Done()
	return Position{}, ctx.Err()
}
