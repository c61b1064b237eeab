package store

import (
	"slices"

	"github.com/i474232898/cosmic-weather/internal/astronomy"
	"github.com/i474232898/cosmic-weather/internal/prefs"
	"github.com/i474232898/cosmic-weather/internal/weather"
)

// Data sources tracked by the store.
const (
	SourceAstronomy = "astronomy"
	SourceWeather   = "weather"
)

// User-facing failure messages. Adapter errors are never shown.
const (
	MsgAstronomyFailed = "Failed to fetch astronomy picture of the day."
	MsgWeatherFailed   = "Failed to fetch weather data. Please try another location."
)

// FetchStatus tracks one data source. At rest Loading and a non-empty Error
// are never both set.
type FetchStatus struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// State is an immutable view of the store. Nil data pointers mean nothing has
// been fetched yet.
type State struct {
	Astronomy       *astronomy.Record `json:"astronomy"`
	Weather         *weather.Snapshot `json:"weather"`
	AstronomyStatus FetchStatus       `json:"astronomyStatus"`
	WeatherStatus   FetchStatus       `json:"weatherStatus"`
	City            string            `json:"city"`
	Theme           prefs.Theme       `json:"theme"`
	Favorites       []string          `json:"favorites"`
}

// IsFavorite reports whether date is in the favorites list.
func (s State) IsFavorite(date string) bool {
	return slices.Contains(s.Favorites, date)
}

// IsCurrentFavorite reports whether the loaded astronomy record is a favorite.
func (s State) IsCurrentFavorite() bool {
	return s.Astronomy != nil && s.IsFavorite(s.Astronomy.Date)
}

func (s State) clone() State {
	dup := s
	if s.Astronomy != nil {
		rec := *s.Astronomy
		dup.Astronomy = &rec
	}
	if s.Weather != nil {
		snap := *s.Weather
		dup.Weather = &snap
	}
	dup.Favorites = slices.Clone(s.Favorites)
	if dup.Favorites == nil {
		dup.Favorites = []string{}
	}
	return dup
}

// toggled returns a copy of favs with date removed if present, appended
// otherwise.
func toggled(favs []string, date string) []string {
	if i := slices.Index(favs, date); i >= 0 {
		return slices.Delete(slices.Clone(favs), i, i+1)
	}
	return append(slices.Clone(favs), date)
}
