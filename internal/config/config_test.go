package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, -37.8676, cfg.DefaultLat)
	assert.Equal(t, 144.9741, cfg.DefaultLon)
	assert.Equal(t, 7, cfg.DefaultDays)
	assert.Equal(t, 16, cfg.MaxDays)
	assert.Equal(t, 8*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.UpstreamRetry)
	assert.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	assert.Contains(t, cfg.CacheControl, "stale-while-revalidate")
	assert.Empty(t, cfg.GeocoderAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("DEFAULT_DAYS", "3")
	t.Setenv("HEALTH_PROBE_INTERVAL", "0s")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.DefaultDays)
	assert.Equal(t, time.Duration(0), cfg.ProbeInterval)
}

func TestLoadInvalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("HTTP_TIMEOUT", "soon")
		_, err := Load(context.Background())
		assert.Error(t, err)
	})
	t.Run("zero days", func(t *testing.T) {
		t.Setenv("DEFAULT_DAYS", "0")
		_, err := Load(context.Background())
		assert.ErrorContains(t, err, "DEFAULT_DAYS")
	})
}
