package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	Port string `env:"PORT,default=8080"`

	// Upstream endpoints and request shape.
	ForecastURL string `env:"FORECAST_URL,default=https://api.open-meteo.com/v1/forecast"`
	MarineURL   string `env:"MARINE_URL,default=https://marine-api.open-meteo.com/v1/marine"`
	Timezone    string `env:"TIMEZONE,default=auto"`

	// HTTPTimeout bounds each outbound upstream call.
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT,default=8s"`
	UpstreamRPS    float64       `env:"UPSTREAM_RPS,default=10"`
	UpstreamBurst  int           `env:"UPSTREAM_BURST,default=20"`
	UpstreamRetry  int           `env:"UPSTREAM_RETRIES,default=0"`
	BreakerTimeout time.Duration `env:"BREAKER_TIMEOUT,default=1m"`

	// Request defaults.
	DefaultLat  float64 `env:"DEFAULT_LAT,default=-37.8676"`
	DefaultLon  float64 `env:"DEFAULT_LON,default=144.9741"`
	DefaultDays int     `env:"DEFAULT_DAYS,default=7"`
	MaxDays     int     `env:"MAX_DAYS,default=16"`

	CacheControl string `env:"CACHE_CONTROL,default=public, max-age=0, s-maxage=10800, stale-while-revalidate=3600"`

	// Upstream health probing (0 disables).
	ProbeInterval time.Duration `env:"HEALTH_PROBE_INTERVAL,default=15m"`
	ProbeHistory  int           `env:"PROBE_HISTORY,default=96"` // roughly 24h at 15-minute intervals
	ProbeMaxAge   time.Duration `env:"PROBE_MAX_AGE,default=24h"`

	GeocoderAPIKey string `env:"GEOCODER_API_KEY"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Load reads configuration from .env (if present) and the environment.
func Load(ctx context.Context) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file found or error loading it: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.DefaultDays < 1 {
		return fmt.Errorf("invalid DEFAULT_DAYS: %d", c.DefaultDays)
	}
	if c.MaxDays < 1 {
		return fmt.Errorf("invalid MAX_DAYS: %d", c.MaxDays)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT: %s", c.HTTPTimeout)
	}
	if c.UpstreamRetry < 0 {
		return fmt.Errorf("invalid UPSTREAM_RETRIES: %d", c.UpstreamRetry)
	}
	return nil
}
