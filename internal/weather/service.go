package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// GeolocationTimeout bounds the position request in FetchLocal. It is the only
// timeout the service applies itself.
const GeolocationTimeout = 5 * time.Second

// Service composes the weather provider, the geocoder and the optional device
// locator. It keeps no state between calls.
type Service struct {
	provider    Provider
	geocoder    Geocoder
	locator     Locator
	defaultCity string
	log         zerolog.Logger
}

// NewService creates a new Service. locator may be nil when the host has no
// geolocation capability.
func NewService(provider Provider, geocoder Geocoder, locator Locator, defaultCity string, log zerolog.Logger) *Service {
	return &Service{
		provider:    provider,
		geocoder:    geocoder,
		locator:     locator,
		defaultCity: defaultCity,
		log:         log.With().Str("component", "weather").Logger(),
	}
}

// DefaultCity returns the configured fallback location.
func (s *Service) DefaultCity() string {
	return s.defaultCity
}

// FetchByCoordinates looks up current conditions directly.
func (s *Service) FetchByCoordinates(ctx context.Context, lat, lon float64) (Snapshot, error) {
	return s.provider.Current(ctx, lat, lon)
}

// FetchByCity geocodes name and fetches conditions for the match. A missing
// match is reported as ErrNotFound; every other failure collapses into
// ErrFetchFailed.
func (s *Service) FetchByCity(ctx context.Context, name string) (Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Snapshot{}, ErrEmptyLocation
	}

	coords, err := s.geocoder.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	snap, err := s.FetchByCoordinates(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return snap, nil
}

// strategy is one step of the local-weather fallback chain.
type strategy struct {
	name string
	run  func(ctx context.Context) (Snapshot, error)
}

// FetchLocal tries the device position first and falls back to the default
// city. Geolocation is attempted once; its failure and a failed lookup for the
// resolved position both route to the default city.
func (s *Service) FetchLocal(ctx context.Context) (Snapshot, error) {
	positioned := false

	strategies := []strategy{
		{
			name: "geolocation",
			run: func(ctx context.Context) (Snapshot, error) {
				pos, err := s.locate(ctx)
				if err != nil {
					return Snapshot{}, err
				}
				positioned = true
				return s.FetchByCoordinates(ctx, pos.Latitude, pos.Longitude)
			},
		},
		{
			name: "default-city",
			run: func(ctx context.Context) (Snapshot, error) {
				return s.FetchByCity(ctx, s.defaultCity)
			},
		},
	}

	snap, err := s.firstSuccess(ctx, strategies)
	if err == nil {
		return snap, nil
	}

	msg := msgEnterManual
	if positioned {
		msg = msgTryLater
	}
	return Snapshot{}, &UnavailableError{Message: msg, Err: err}
}

func (s *Service) firstSuccess(ctx context.Context, strategies []strategy) (Snapshot, error) {
	var errs []error
	for _, st := range strategies {
		snap, err := st.run(ctx)
		if err == nil {
			s.log.Debug().Str("strategy", st.name).Msg("local weather resolved")
			return snap, nil
		}
		s.log.Warn().Err(err).Str("strategy", st.name).Msg("local weather strategy failed")
		errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
	}
	return Snapshot{}, errors.Join(errs...)
}

func (s *Service) locate(ctx context.Context) (Position, error) {
	if s.locator == nil {
		return Position{}, ErrGeolocationUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, GeolocationTimeout)
	defer cancel()

	return s.locator.Locate(ctx, LocateOptions{
		HighAccuracy: true,
		Timeout:      GeolocationTimeout,
		MaxAge:       0,
	})
}
