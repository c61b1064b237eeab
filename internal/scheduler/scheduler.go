package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/cosmic-weather/internal/store"
)

// Refresher is the part of the store the background jobs drive.
type Refresher interface {
	Snapshot() store.State
	LoadAstronomy(ctx context.Context)
	LoadWeather(ctx context.Context, locationName string)
}

// Scheduler periodically refreshes the weather for the current city and the
// astronomy entry once a day.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	refresher    Refresher
	weatherEvery time.Duration
	astronomyAt  string
	log          zerolog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates a new Scheduler. A zero weatherEvery or an empty astronomyAt
// (HH:MM, UTC) disables the corresponding job.
func New(r Refresher, weatherEvery time.Duration, astronomyAt string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		refresher:    r,
		weatherEvery: weatherEvery,
		astronomyAt:  astronomyAt,
		log:          log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the jobs and starts the underlying scheduler. Jobs run
// with ctx until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.weatherEvery > 0 {
		minutes := int(s.weatherEvery.Minutes())
		if minutes <= 0 {
			minutes = 1
		}
		_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().SingletonMode().Do(s.refreshWeather)
		if err != nil {
			return err
		}
	}

	if s.astronomyAt != "" {
		_, err := s.scheduler.Every(1).Day().At(s.astronomyAt).SingletonMode().Do(s.refreshAstronomy)
		if err != nil {
			return err
		}
	}

	if len(s.scheduler.Jobs()) == 0 {
		s.log.Info().Msg("no refresh jobs configured")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any running job.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshWeather() {
	city := s.refresher.Snapshot().City
	s.log.Debug().Str("city", city).Msg("running weather refresh")
	s.refresher.LoadWeather(s.jobContext(), city)
}

func (s *Scheduler) refreshAstronomy() {
	s.log.Debug().Msg("running astronomy refresh")
	s.refresher.LoadAstronomy(s.jobContext())
}

func (s *Scheduler) jobContext() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}
