package logging

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	log, w, err := New(path, zerolog.InfoLevel)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("source", "weather").Msg("fetched")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "exactly one JSON line expected, got %q", data)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fetched", entry["message"])
	assert.Equal(t, "weather", entry["source"])
	assert.Equal(t, "cosmic-weather", entry["app"])
}

func TestNew_EmptyPathUsesStderr(t *testing.T) {
	_, w, err := New("", zerolog.WarnLevel)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}

func TestNew_UnwritableDirFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, _, err := New(filepath.Join(blocker, "app.log"), zerolog.InfoLevel)
	assert.Error(t, err)
}
