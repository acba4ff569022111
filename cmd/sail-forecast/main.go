package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/sail-forecast/internal/api/http"
	"github.com/i474232898/sail-forecast/internal/config"
	"github.com/i474232898/sail-forecast/internal/logging"
	"github.com/i474232898/sail-forecast/internal/scheduler"
	"github.com/i474232898/sail-forecast/internal/store"
	"github.com/i474232898/sail-forecast/internal/weather"
	"github.com/i474232898/sail-forecast/internal/weather/providers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	clientCfg := providers.ClientConfig{
		Timeout:        cfg.HTTPTimeout,
		RPS:            cfg.UpstreamRPS,
		Burst:          cfg.UpstreamBurst,
		BreakerTimeout: cfg.BreakerTimeout,
		Backoff: providers.BackoffConfig{
			MaxRetries:      cfg.UpstreamRetry,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
	}

	defaultCoord := weather.Coordinate{Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLon}

	// Probe results only feed /health, so history is kept in memory.
	probeStore := store.NewMemoryStore(cfg.ProbeHistory, cfg.ProbeMaxAge)

	service := weather.NewService(
		probeStore,
		providers.NewOpenMeteoProvider(cfg.ForecastURL, cfg.Timezone, clientCfg),
		providers.NewOpenMeteoMarineProvider(cfg.MarineURL, cfg.Timezone, clientCfg),
		weather.Settings{MaxDays: cfg.MaxDays, ProbeCoordinate: defaultCoord},
	)

	var geo weather.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	sched := scheduler.New(service, cfg.ProbeInterval, 30*time.Second)
	if err := sched.Start(); err != nil {
		logrus.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.AppOptions{
		CacheControl: cfg.CacheControl,
		AccessLog:    true,
	})
	httpapi.RegisterRoutes(app, service, geo, httpapi.Defaults{
		Coordinate: defaultCoord,
		Days:       cfg.DefaultDays,
	})

	go func() {
		logrus.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.Errorf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logrus.Errorf("error during shutdown: %v", err)
	}
}
