package providers

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/i474232898/sail-forecast/internal/weather"
)

// DefaultMarineURL is the Open-Meteo marine endpoint.
const DefaultMarineURL = "https://marine-api.open-meteo.com/v1/marine"

var errNoMarineData = errors.New("no marine time series")

// OpenMeteoMarineProvider implements weather.MarineProvider for the Open-Meteo marine API.
type OpenMeteoMarineProvider struct {
	name     string
	timezone string
	api      *upstream
}

func NewOpenMeteoMarineProvider(baseURL, timezone string, cfg ClientConfig) *OpenMeteoMarineProvider {
	if baseURL == "" {
		baseURL = DefaultMarineURL
	}
	if timezone == "" {
		timezone = "auto"
	}
	return &OpenMeteoMarineProvider{
		name:     "openmeteo-marine",
		timezone: timezone,
		api:      newUpstream("openmeteo-marine", baseURL, cfg),
	}
}

func (p *OpenMeteoMarineProvider) Name() string {
	return p.name
}

func (p *OpenMeteoMarineProvider) FetchMarine(ctx context.Context, coord weather.Coordinate, days int) (*weather.MarineFrame, error) {
	params := map[string]string{
		"latitude":      formatCoord(coord.Latitude),
		"longitude":     formatCoord(coord.Longitude),
		"hourly":        "wave_height,wave_period,wave_direction",
		"timezone":      p.timezone,
		"forecast_days": strconv.Itoa(days),
	}

	var payload struct {
		Hourly struct {
			Time          []string   `json:"time"`
			WaveHeight    []*float64 `json:"wave_height"`
			WavePeriod    []*float64 `json:"wave_period"`
			WaveDirection []*float64 `json:"wave_direction"`
		} `json:"hourly"`
	}

	if err := p.api.getJSON(ctx, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Hourly.Time) == 0 {
		return nil, errors.Wrap(errNoMarineData, p.name)
	}

	return &weather.MarineFrame{
		Time:          payload.Hourly.Time,
		WaveHeight:    payload.Hourly.WaveHeight,
		WavePeriod:    payload.Hourly.WavePeriod,
		WaveDirection: payload.Hourly.WaveDirection,
	}, nil
}
