package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cosmic-weather/internal/weather"
)

func TestIPLocator_Success(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "status,message,lat,lon", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"status":"success","lat":26.9,"lon":75.8}`))
	})

	pos, err := NewIPLocator(s.Client(), s.URL, nil).Locate(context.Background(), weather.LocateOptions{HighAccuracy: true})
	require.NoError(t, err)
	assert.Equal(t, weather.Position{Latitude: 26.9, Longitude: 75.8, AccuracyM: ipAccuracyMeters}, pos)
}

func TestIPLocator_FailStatusIsPositionUnavailable(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	})

	_, err := NewIPLocator(s.Client(), s.URL, nil).Locate(context.Background(), weather.LocateOptions{})
	assert.ErrorIs(t, err, weather.ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "private range")
}

func TestIPLocator_ForbiddenIsPermissionDenied(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := NewIPLocator(s.Client(), s.URL, nil).Locate(context.Background(), weather.LocateOptions{})
	assert.ErrorIs(t, err, weather.ErrPermissionDenied)
}

func TestIPLocator_TimeoutReturnsContextError(t *testing.T) {
	release := make(chan struct{})
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewIPLocator(s.Client(), s.URL, nil).Locate(ctx, weather.LocateOptions{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
