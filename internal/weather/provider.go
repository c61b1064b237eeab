package weather

import (
	"context"
	"time"
)

// Provider fetches current conditions by coordinates.
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (Snapshot, error)
}

// Geocoder resolves a free-text city name to its best match. Implementations
// return ErrNotFound when nothing matches.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (Coordinates, error)
}

// LocateOptions mirrors a single-shot position request.
type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxAge is the oldest cached fix accepted; zero means a fresh fix.
	MaxAge time.Duration
}

// Locator is the host's geolocation capability. A nil Locator means the
// capability is absent.
type Locator interface {
	Locate(ctx context.Context, opts LocateOptions) (Position, error)
}
