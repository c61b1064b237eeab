// Package app wires configuration, adapters, the state store and its
// consumers together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/cosmic-weather/internal/api/http"
	"github.com/i474232898/cosmic-weather/internal/astronomy"
	"github.com/i474232898/cosmic-weather/internal/config"
	"github.com/i474232898/cosmic-weather/internal/logging"
	"github.com/i474232898/cosmic-weather/internal/metrics"
	"github.com/i474232898/cosmic-weather/internal/prefs"
	"github.com/i474232898/cosmic-weather/internal/scheduler"
	"github.com/i474232898/cosmic-weather/internal/store"
	"github.com/i474232898/cosmic-weather/internal/ui"
	"github.com/i474232898/cosmic-weather/internal/weather"
	"github.com/i474232898/cosmic-weather/internal/weather/providers"
)

const shutdownTimeout = 10 * time.Second

// Options configures Run.
type Options struct {
	ConfigPath string
	// Headless skips the terminal UI, logs to stderr and serves only the
	// local API until ctx is done.
	Headless bool
}

// Run starts the application and blocks until the UI exits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := ""
	if !opts.Headless {
		if logPath, err = config.ExpandPath(cfg.LogFile); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	log, logOutput, err := logging.New(logPath, cfg.ZerologLevel())
	if err != nil {
		return err
	}
	defer logOutput.Close()

	for _, w := range cfg.Warnings() {
		log.Warn().Err(w).Msg("configuration incomplete")
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	apod := astronomy.NewClient(httpClient, cfg.NASAAPIKey, m)

	// Leave the interface nil when geolocation is off.
	var locator weather.Locator
	if cfg.GeolocationEnabled() {
		locator = providers.NewIPLocator(httpClient, cfg.GeolocationURL, m)
	}
	wx := weather.NewService(
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, m),
		providers.NewOpenWeatherGeocoder(httpClient, cfg.OpenWeatherAPIKey, m),
		locator,
		cfg.DefaultCity,
		log,
	)

	ps, err := prefs.Open(cfg.PrefsPath, log)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer ps.Close()

	systemDark := lipgloss.HasDarkBackground
	if opts.Headless {
		systemDark = func() bool { return true }
	}
	st := store.New(apod, wx, ps, ps.Load(ctx, systemDark), log, m)

	sched := scheduler.New(st, cfg.WeatherRefresh, cfg.AstronomyRefreshAt, log)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	if cfg.APIAddr != "" {
		api := httpapi.NewApp(logOutput)
		httpapi.RegisterRoutes(api, st, apod, reg, log)

		go func() {
			log.Info().Str("addr", cfg.APIAddr).Msg("local API listening")
			if err := api.Listen(cfg.APIAddr); err != nil {
				log.Error().Err(err).Msg("local API stopped")
			}
		}()
		defer shutdown(api.ShutdownWithContext, log)
	}

	// Runs before the deferred closes above so no load outlives the log
	// file or the preferences database.
	defer startInitialLoads(ctx, st)()

	if opts.Headless {
		<-ctx.Done()
		return nil
	}
	return ui.Run(ctx, st)
}

// initialLoader is the part of the store fetched once at startup.
type initialLoader interface {
	LoadAstronomy(ctx context.Context)
	LoadWeather(ctx context.Context, locationName string)
}

// startInitialLoads fetches the picture of the day and the local weather in
// the background. The returned func cancels both and waits for them.
func startInitialLoads(ctx context.Context, l initialLoader) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.LoadAstronomy(ctx)
	}()
	go func() {
		defer wg.Done()
		l.LoadWeather(ctx, "")
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func shutdown(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
