package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/smart-mirror/internal/api/http"
	"github.com/i474232898/smart-mirror/internal/config"
	"github.com/i474232898/smart-mirror/internal/datetime"
	"github.com/i474232898/smart-mirror/internal/profile"
	"github.com/i474232898/smart-mirror/internal/quotes"
	"github.com/i474232898/smart-mirror/internal/scheduler"
	"github.com/i474232898/smart-mirror/internal/store"
	"github.com/i474232898/smart-mirror/internal/weather"
	"github.com/i474232898/smart-mirror/internal/weather/providers"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "smart-mirror").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = log.Level(cfg.ZerologLevel())

	if err := run(log, cfg); err != nil {
		log.Fatal().Err(err).Msg("smart-mirror stopped")
	}
}

// run returns instead of exiting so every deferred shutdown step executes.
func run(log zerolog.Logger, cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(log.WithContext(context.Background()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound weather calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source, err := newSource(httpClient, cfg.Weather)
	if err != nil {
		return fmt.Errorf("failed to configure weather source: %w", err)
	}

	profiles, closeProfiles, err := newProfileStore(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to open profile store: %w", err)
	}
	defer closeProfiles()

	if name, err := profiles.LoadUsername(ctx); err == nil {
		log.Info().Str("username", name).Msg("loaded configured username")
	} else {
		log.Debug().Err(err).Msg("no username set yet")
	}

	quoteList, err := quotes.Load(cfg.Quotes.File)
	if err != nil {
		return fmt.Errorf("failed to load quotes: %w", err)
	}
	rotator := quotes.NewRotator(quoteList)
	clock := datetime.NewTicker(cfg.Location)

	views := store.NewMemoryStore()
	service := weather.NewService(views, source, cfg.Location)

	poller := scheduler.NewPoller(service,
		scheduler.WithDelay(cfg.Weather.PollInterval),
		scheduler.WithFetchTimeout(cfg.Weather.FetchTimeout),
	)
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start weather poller: %w", err)
	}
	defer poller.Stop()

	// Widget jobs: the clock every second, the quote of the day every interval.
	widgets := scheduler.New(cfg.Location,
		scheduler.Job{Name: "clock", Interval: time.Second, Run: clock.Tick},
		scheduler.Job{Name: "quote", Interval: cfg.Quotes.Interval, Run: rotator.Rotate},
	)
	if err := widgets.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer widgets.Stop()

	app := httpapi.NewApp(false)
	httpapi.RegisterRoutes(app, httpapi.Dependencies{
		Weather: service,
		Clock:   clock,
		Quotes:  rotator,
		Profile: profiles,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting http server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	return nil
}

func newSource(client *http.Client, cfg config.WeatherConfig) (weather.Source, error) {
	switch cfg.Provider {
	case config.ProviderStation:
		return providers.NewStationSource(client, cfg.BaseURL), nil
	case config.ProviderOpenWeather:
		return providers.NewOpenWeatherSource(client, cfg.OpenWeatherAPIKey, cfg.City, cfg.Country), nil
	case config.ProviderOpenMeteo:
		return providers.NewOpenMeteoSource(client, cfg.Latitude, cfg.Longitude), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}

// newProfileStore uses Redis when an address is configured.
func newProfileStore(ctx context.Context, cfg config.RedisConfig) (profile.Store, func(), error) {
	if cfg.Addr == "" {
		return profile.NewMemoryStore(), func() {}, nil
	}

	rs, err := profile.NewRedisStore(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}
