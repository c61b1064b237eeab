// Package store is the process-wide application state: fetched data,
// per-source loading and error flags, the current city and the user's
// preferences. All mutation goes through the action methods; consumers read
// snapshots or subscribe to changes.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/i474232898/cosmic-weather/internal/astronomy"
	"github.com/i474232898/cosmic-weather/internal/metrics"
	"github.com/i474232898/cosmic-weather/internal/prefs"
	"github.com/i474232898/cosmic-weather/internal/weather"
)

// ErrEmptyDate is returned by ToggleFavorite for a blank date.
var ErrEmptyDate = errors.New("favorite date is empty")

// AstronomySource fetches the current APOD entry.
type AstronomySource interface {
	FetchToday(ctx context.Context) (astronomy.Record, error)
}

// WeatherSource fetches current weather by city or by the device location.
type WeatherSource interface {
	FetchByCity(ctx context.Context, name string) (weather.Snapshot, error)
	FetchLocal(ctx context.Context) (weather.Snapshot, error)
}

// PreferenceWriter persists preference changes.
type PreferenceWriter interface {
	SaveTheme(ctx context.Context, t prefs.Theme) error
	SaveFavorites(ctx context.Context, favorites []string) error
}

// Store owns all mutable application state.
//
// Actions may run concurrently. Each load is tagged with a per-source sequence
// number and only the most recently issued load of a source may settle it;
// older completions are dropped.
type Store struct {
	astronomy AstronomySource
	weather   WeatherSource
	prefs     PreferenceWriter

	// commitMu orders commits and their notifications.
	commitMu sync.Mutex
	mu       sync.RWMutex
	state    State
	seq      map[string]uint64

	// prefMu makes persist-then-update atomic per preference mutation.
	prefMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int

	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a Store seeded with the loaded preferences. Data slots start
// empty and both sources at rest.
func New(astro AstronomySource, wx WeatherSource, pw PreferenceWriter, initial prefs.Preferences, log zerolog.Logger, m *metrics.Metrics) *Store {
	theme := initial.Theme
	if !theme.Valid() {
		theme = prefs.ThemeDark
	}
	s := &Store{
		astronomy: astro,
		weather:   wx,
		prefs:     pw,
		seq:       make(map[string]uint64),
		subs:      make(map[int]func(State)),
		log:       log.With().Str("component", "store").Logger(),
		metrics:   m,
	}
	s.state = State{
		Theme:     theme,
		Favorites: initial.Favorites,
	}.clone()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive every committed state. fn runs on the
// goroutine that performed the change and must not call Store actions
// synchronously. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// LoadAstronomy fetches today's APOD entry.
func (s *Store) LoadAstronomy(ctx context.Context) {
	seq := s.begin(SourceAstronomy)

	rec, err := s.astronomy.FetchToday(ctx)

	s.settle(SourceAstronomy, seq, err, func(st *State) {
		if err != nil {
			st.AstronomyStatus = FetchStatus{Error: MsgAstronomyFailed}
			return
		}
		st.Astronomy = &rec
		st.AstronomyStatus = FetchStatus{}
	})
}

// LoadWeather fetches weather for locationName, or for the device location
// when locationName is blank. On success the current city becomes the given
// name, or the name reported for the device location.
func (s *Store) LoadWeather(ctx context.Context, locationName string) {
	seq := s.begin(SourceWeather)

	var (
		snap weather.Snapshot
		err  error
	)
	city := strings.TrimSpace(locationName)
	if city != "" {
		snap, err = s.weather.FetchByCity(ctx, city)
	} else {
		snap, err = s.weather.FetchLocal(ctx)
		city = snap.LocationName
	}

	s.settle(SourceWeather, seq, err, func(st *State) {
		if err != nil {
			st.WeatherStatus = FetchStatus{Error: MsgWeatherFailed}
			return
		}
		st.Weather = &snap
		st.City = city
		st.WeatherStatus = FetchStatus{}
	})
}

// SetCity assigns the current city without fetching.
func (s *Store) SetCity(name string) {
	s.commit(func(st *State) bool {
		st.City = name
		return true
	})
}

// ToggleFavorite adds date to the favorites if absent and removes it
// otherwise. The new list is persisted before the in-memory state changes; on
// a write failure the state is left untouched.
func (s *Store) ToggleFavorite(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return ErrEmptyDate
	}

	s.prefMu.Lock()
	defer s.prefMu.Unlock()

	next := toggled(s.Snapshot().Favorites, date)
	if err := s.prefs.SaveFavorites(ctx, next); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}

	s.commit(func(st *State) bool {
		st.Favorites = next
		return true
	})
	return nil
}

// ToggleTheme flips between dark and light, persisting before updating.
func (s *Store) ToggleTheme(ctx context.Context) error {
	s.prefMu.Lock()
	defer s.prefMu.Unlock()

	next := s.Snapshot().Theme.Toggle()
	if err := s.prefs.SaveTheme(ctx, next); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	s.commit(func(st *State) bool {
		st.Theme = next
		return true
	})
	return nil
}

// begin issues a new sequence number for source and marks it loading.
func (s *Store) begin(source string) uint64 {
	var seq uint64
	s.commit(func(st *State) bool {
		s.seq[source]++
		seq = s.seq[source]
		*statusOf(st, source) = FetchStatus{Loading: true}
		return true
	})
	return seq
}

// settle applies apply if seq is still the latest load for source.
func (s *Store) settle(source string, seq uint64, err error, apply func(st *State)) {
	applied := s.commit(func(st *State) bool {
		if s.seq[source] != seq {
			return false
		}
		apply(st)
		return true
	})

	switch {
	case !applied:
		s.log.Debug().Str("source", source).Uint64("seq", seq).Msg("discarding stale response")
		s.metrics.IncAction(source, "stale")
	case err != nil:
		s.log.Warn().Err(err).Str("source", source).Msg("fetch failed")
		s.metrics.IncAction(source, "error")
	default:
		s.metrics.IncAction(source, "success")
	}
}

// commit runs fn under the write lock and, when fn reports a change,
// notifies subscribers with the resulting snapshot.
func (s *Store) commit(fn func(st *State) bool) bool {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	changed := fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return changed
}

func (s *Store) notify(snap State) {
	s.subsMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

func statusOf(st *State, source string) *FetchStatus {
	if source == SourceAstronomy {
		return &st.AstronomyStatus
	}
	return &st.WeatherStatus
}
