// Package prefs persists user preferences (theme and favorite APOD dates) in a
// local sqlite key-value table.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is one of the two known themes.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

const (
	keyTheme     = "theme"
	keyFavorites = "favorites"

	defaultPrefsPath = "~/.local/state/cosmic-weather/prefs.db"
)

var errNotFound = errors.New("setting not found")

// Preferences is the persisted user state. Favorites keeps insertion order
// and holds no duplicates.
type Preferences struct {
	Theme     Theme
	Favorites []string
}

// Store is a thin typed facade over the settings table.
type Store struct {
	conn *sql.DB
	log  zerolog.Logger
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	return defaultPrefsPath
}

// Open opens (creating if needed) the preferences database at path. An empty
// path selects DefaultPath.
func Open(path string, log zerolog.Logger) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}

	conn, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps write-then-read ordering trivial.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, log: log.With().Str("component", "prefs").Logger()}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Load reads the stored preferences. A missing or unreadable theme falls back
// to the system preference reported by systemDark; missing or undecodable
// favorites fall back to an empty list. Load never fails.
func (s *Store) Load(ctx context.Context, systemDark func() bool) Preferences {
	p := Preferences{Theme: ThemeLight, Favorites: []string{}}
	if systemDark != nil && systemDark() {
		p.Theme = ThemeDark
	}

	if raw, err := s.get(ctx, keyTheme); err == nil {
		if t := Theme(raw); t.Valid() {
			p.Theme = t
		} else {
			s.log.Warn().Str("value", raw).Msg("ignoring invalid stored theme")
		}
	} else if !errors.Is(err, errNotFound) {
		s.log.Error().Err(err).Msg("read theme")
	}

	if raw, err := s.get(ctx, keyFavorites); err == nil {
		var favs []string
		if err := json.Unmarshal([]byte(raw), &favs); err != nil {
			s.log.Warn().Err(err).Msg("ignoring undecodable favorites")
		} else {
			p.Favorites = dedupe(favs)
		}
	} else if !errors.Is(err, errNotFound) {
		s.log.Error().Err(err).Msg("read favorites")
	}

	return p
}

// SaveTheme writes the theme value.
func (s *Store) SaveTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q", t)
	}
	return s.set(ctx, keyTheme, string(t))
}

// SaveFavorites writes the full favorites list as a JSON array.
func (s *Store) SaveFavorites(ctx context.Context, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	b, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	return s.set(ctx, keyFavorites, string(b))
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNotFound
	}
	return value, err
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
