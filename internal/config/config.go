package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/cosmic-weather/internal/prefs"
	"github.com/i474232898/cosmic-weather/internal/weather/providers"
)

const (
	defaultConfigPath = "~/.config/cosmic-weather/config.toml"
	defaultLogFile    = "~/.local/state/cosmic-weather/cosmic-weather.log"

	// GeolocationOff disables device geolocation.
	GeolocationOff = "off"
)

var validate = validator.New()

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	OpenWeatherAPIKey string
	NASAAPIKey        string

	// DefaultCity is used whenever the device location cannot be determined.
	DefaultCity string `validate:"required"`

	// GeolocationURL is the IP geolocation endpoint, or GeolocationOff.
	GeolocationURL string `validate:"required"`

	PrefsPath string `validate:"required"`

	// APIAddr is the local JSON API listen address; empty disables it.
	APIAddr string `validate:"omitempty,hostname_port"`

	// HTTPTimeout bounds outbound calls. Zero means no timeout.
	HTTPTimeout time.Duration `validate:"gte=0"`

	// WeatherRefresh is the background weather refresh period; zero disables it.
	WeatherRefresh time.Duration `validate:"gte=0"`

	// AstronomyRefreshAt is the UTC wall-clock time (HH:MM) of the daily APOD
	// refresh; empty disables it.
	AstronomyRefreshAt string `validate:"omitempty,datetime=15:04"`

	LogLevel string `validate:"required,oneof=trace debug info warn error"`
	LogFile  string
}

// ConfigurationError reports a missing setting that does not stop startup.
type ConfigurationError struct {
	Key    string
	Effect string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not set: %s", e.Key, e.Effect)
}

// fileConfig mirrors the optional TOML file.
type fileConfig struct {
	OpenWeatherAPIKey  string `toml:"openweather_api_key"`
	NASAAPIKey         string `toml:"nasa_api_key"`
	DefaultCity        string `toml:"default_city"`
	GeolocationURL     string `toml:"geolocation_url"`
	PrefsPath          string `toml:"prefs_path"`
	APIAddr            string `toml:"api_addr"`
	HTTPTimeout        string `toml:"http_timeout"`
	WeatherRefresh     string `toml:"weather_refresh"`
	AstronomyRefreshAt string `toml:"astronomy_refresh_at"`
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
	apiAddrSet         bool
}

// Load reads configuration from the TOML file at path (optional; empty uses
// the default location), then the environment, with .env loaded first.
// Environment values win over the file.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	file, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", file.OpenWeatherAPIKey)
	cfg.NASAAPIKey = getenvDefault("NASA_API_KEY", file.NASAAPIKey)
	cfg.DefaultCity = strings.TrimSpace(getenvDefault("COSMIC_DEFAULT_CITY", orDefault(file.DefaultCity, "Jaipur")))
	cfg.GeolocationURL = getenvDefault("COSMIC_GEOLOCATION_URL", orDefault(file.GeolocationURL, providers.DefaultIPLocateURL))
	cfg.PrefsPath = getenvDefault("COSMIC_PREFS_PATH", orDefault(file.PrefsPath, prefs.DefaultPath()))
	cfg.LogLevel = strings.ToLower(getenvDefault("COSMIC_LOG_LEVEL", orDefault(file.LogLevel, "info")))
	cfg.LogFile = getenvDefault("COSMIC_LOG_FILE", orDefault(file.LogFile, defaultLogFile))
	cfg.AstronomyRefreshAt = getenvDefault("COSMIC_ASTRONOMY_REFRESH_AT", orDefault(file.AstronomyRefreshAt, "00:05"))

	// An explicitly empty address disables the API.
	cfg.APIAddr = "127.0.0.1:8787"
	if file.apiAddrSet {
		cfg.APIAddr = file.APIAddr
	}
	if v, ok := os.LookupEnv("COSMIC_API_ADDR"); ok {
		cfg.APIAddr = v
	}

	if cfg.HTTPTimeout, err = getenvDuration("COSMIC_HTTP_TIMEOUT", orDefault(file.HTTPTimeout, "0s")); err != nil {
		return nil, err
	}
	if cfg.WeatherRefresh, err = getenvDuration("COSMIC_WEATHER_REFRESH", orDefault(file.WeatherRefresh, "30m")); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Warnings returns the non-fatal configuration problems.
func (c *AppConfig) Warnings() []error {
	var warns []error
	if c.OpenWeatherAPIKey == "" {
		warns = append(warns, &ConfigurationError{
			Key:    "OPENWEATHER_API_KEY",
			Effect: "all weather requests will fail",
		})
	}
	if c.NASAAPIKey == "" {
		warns = append(warns, &ConfigurationError{
			Key:    "NASA_API_KEY",
			Effect: "using the rate-limited DEMO_KEY",
		})
	}
	return warns
}

// GeolocationEnabled reports whether device geolocation should be attempted.
func (c *AppConfig) GeolocationEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.GeolocationURL), GeolocationOff)
}

// ZerologLevel returns the parsed log level.
func (c *AppConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return fc, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fc, nil
		}
		return fc, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}

	var keys map[string]any
	if err := toml.Unmarshal(data, &keys); err == nil {
		_, fc.apiAddrSet = keys["api_addr"]
	}
	return fc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
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
