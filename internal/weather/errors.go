package weather

import "errors"

var (
	// ErrNotFound is returned when geocoding yields no match for a name.
	ErrNotFound = errors.New("location not found")

	// ErrEmptyLocation is returned, without any network call, for a blank
	// location name.
	ErrEmptyLocation = errors.New("location name is empty")

	// ErrFetchFailed is the generic by-city failure. The underlying cause is
	// only kept as text.
	ErrFetchFailed = errors.New("unable to fetch weather data")

	// ErrWeatherUnavailable marks the terminal failure of FetchLocal.
	ErrWeatherUnavailable = errors.New("weather unavailable")

	ErrGeolocationUnavailable = errors.New("geolocation is not available")
	ErrPermissionDenied       = errors.New("geolocation permission denied")
	ErrPositionUnavailable    = errors.New("position unavailable")
)

const (
	msgTryLater    = "Unable to fetch weather data. Please try again later."
	msgEnterManual = "Unable to fetch weather data. Please enter a city manually."
)

// UnavailableError is returned by FetchLocal once every fallback has failed.
// Message is suitable for display.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	return e.Message
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrWeatherUnavailable, e.Err}
}

// NeedsManualEntry reports whether the device location could not be used at
// all, so only a typed city can help.
func (e *UnavailableError) NeedsManualEntry() bool {
	return e.Message == msgEnterManual
}
