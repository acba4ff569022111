package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/sail-forecast/internal/weather"
)

// DefaultForecastURL is the Open-Meteo forecast endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

var (
	forecastHourlyFields = []string{
		"temperature_2m",
		"precipitation",
		"cloud_cover",
		"wind_speed_10m",
		"wind_direction_10m",
		"wind_gusts_10m",
		"weather_code",
	}
	forecastDailyFields = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
	}
)

// OpenMeteoProvider implements weather.ForecastProvider for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name     string
	timezone string
	api      *upstream
}

func NewOpenMeteoProvider(baseURL, timezone string, cfg ClientConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	if timezone == "" {
		timezone = "auto"
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		timezone: timezone,
		api:      newUpstream("openmeteo", baseURL, cfg),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchForecast retrieves hourly and daily frames. A payload without an hourly
// time series, or with arrays that disagree in length, is reported as
// weather.ErrUpstreamUnavailable.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coord weather.Coordinate, days int) (*weather.ForecastFrames, error) {
	params := map[string]string{
		"latitude":        formatCoord(coord.Latitude),
		"longitude":       formatCoord(coord.Longitude),
		"hourly":          strings.Join(forecastHourlyFields, ","),
		"daily":           strings.Join(forecastDailyFields, ","),
		"timezone":        p.timezone,
		"forecast_days":   strconv.Itoa(days),
		"wind_speed_unit": "kmh",
	}

	// Older deployments use the unseparated field names; both are accepted.
	var payload struct {
		Hourly struct {
			Time             []string  `json:"time"`
			Temperature      []float64 `json:"temperature_2m"`
			Precipitation    []float64 `json:"precipitation"`
			CloudCover       []float64 `json:"cloud_cover"`
			CloudCoverOld    []float64 `json:"cloudcover"`
			WindSpeed        []float64 `json:"wind_speed_10m"`
			WindSpeedOld     []float64 `json:"windspeed_10m"`
			WindDirection    []float64 `json:"wind_direction_10m"`
			WindDirectionOld []float64 `json:"winddirection_10m"`
			WindGusts        []float64 `json:"wind_gusts_10m"`
			WindGustsOld     []float64 `json:"windgusts_10m"`
			WeatherCode      []int     `json:"weather_code"`
			WeatherCodeOld   []int     `json:"weathercode"`
		} `json:"hourly"`
		Daily struct {
			Time             []string  `json:"time"`
			TemperatureMax   []float64 `json:"temperature_2m_max"`
			TemperatureMin   []float64 `json:"temperature_2m_min"`
			PrecipitationSum []float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}

	if err := p.api.getJSON(ctx, params, &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	hourly := weather.HourlyFrame{
		Time:          h.Time,
		Temperature:   h.Temperature,
		WindSpeed:     pickFloats(h.WindSpeed, h.WindSpeedOld),
		WindDirection: pickFloats(h.WindDirection, h.WindDirectionOld),
		WindGusts:     pickFloats(h.WindGusts, h.WindGustsOld),
		Precipitation: h.Precipitation,
		CloudCover:    pickFloats(h.CloudCover, h.CloudCoverOld),
		WeatherCode:   pickInts(h.WeatherCode, h.WeatherCodeOld),
	}
	daily := weather.DailyFrame{
		Time:             payload.Daily.Time,
		TemperatureMax:   payload.Daily.TemperatureMax,
		TemperatureMin:   payload.Daily.TemperatureMin,
		PrecipitationSum: payload.Daily.PrecipitationSum,
	}

	if err := validateFrames(hourly, daily); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrUpstreamUnavailable, p.name, err)
	}

	return &weather.ForecastFrames{Hourly: hourly, Daily: daily}, nil
}

func validateFrames(hourly weather.HourlyFrame, daily weather.DailyFrame) error {
	n := hourly.Len()
	if n == 0 {
		return fmt.Errorf("missing hourly time series")
	}

	type arrayLen struct {
		field string
		got   int
	}

	for _, a := range []arrayLen{
		{"temperature_2m", len(hourly.Temperature)},
		{"wind_speed_10m", len(hourly.WindSpeed)},
		{"wind_direction_10m", len(hourly.WindDirection)},
		{"wind_gusts_10m", len(hourly.WindGusts)},
		{"precipitation", len(hourly.Precipitation)},
		{"cloud_cover", len(hourly.CloudCover)},
	} {
		if a.got != n {
			return fmt.Errorf("hourly %s has %d values, want %d", a.field, a.got, n)
		}
	}
	if wc := len(hourly.WeatherCode); wc != 0 && wc != n {
		return fmt.Errorf("hourly weather_code has %d values, want %d", wc, n)
	}

	d := len(daily.Time)
	for _, a := range []arrayLen{
		{"temperature_2m_max", len(daily.TemperatureMax)},
		{"temperature_2m_min", len(daily.TemperatureMin)},
		{"precipitation_sum", len(daily.PrecipitationSum)},
	} {
		if a.got != d {
			return fmt.Errorf("daily %s has %d values, want %d", a.field, a.got, d)
		}
	}
	return nil
}

func pickFloats(current, legacy []float64) []float64 {
	if current != nil {
		return current
	}
	return legacy
}

func pickInts(current, legacy []int) []int {
	if current != nil {
		return current
	}
	return legacy
}
