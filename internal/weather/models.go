package weather

import (
	"time"
)

// Coordinate is a resolved forecast location.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// HourlyFrame holds the primary provider's hourly parallel arrays.
// All arrays share the length of Time, except WeatherCode which may be absent.
type HourlyFrame struct {
	Time          []string
	Temperature   []float64 // °C
	WindSpeed     []float64 // km/h
	WindDirection []float64 // degrees
	WindGusts     []float64 // km/h
	Precipitation []float64 // mm
	CloudCover    []float64 // %
	WeatherCode   []int
}

// Len returns the number of forecast hours.
func (h HourlyFrame) Len() int {
	return len(h.Time)
}

// DailyFrame holds the primary provider's per-date aggregates.
type DailyFrame struct {
	Time             []string
	TemperatureMax   []float64
	TemperatureMin   []float64
	PrecipitationSum []float64
}

// ForecastFrames is everything the primary provider returns for one request.
type ForecastFrames struct {
	Hourly HourlyFrame
	Daily  DailyFrame
}

// MarineFrame holds the marine provider's hourly wave arrays.
// Individual values may be null for coordinates the wave model does not cover.
type MarineFrame struct {
	Time          []string
	WaveHeight    []*float64 // m
	WavePeriod    []*float64 // s
	WaveDirection []*float64 // degrees
}

// WavePoint is the merged wave reading for one hour.
type WavePoint struct {
	Height float64
	Period int
}

// HourRecord is one display hour of a day.
type HourRecord struct {
	Hour       int     `json:"hour"`
	Temp       int     `json:"temp"`
	Wind       int     `json:"wind"` // knots
	WindDir    int     `json:"windDir"`
	Gust       int     `json:"gust"` // knots
	Rain       float64 `json:"rain"`
	Cloud      int     `json:"cloud"`
	WaveHeight float64 `json:"waveHeight"`
	WavePeriod int     `json:"wavePeriod"`
	Thunder    bool    `json:"thunder"`
}

// DaySummary is the per-date view returned to clients.
type DaySummary struct {
	Date          string       `json:"date"`
	Label         string       `json:"label"`
	TempMax       int          `json:"tempMax"`
	TempMin       int          `json:"tempMin"`
	Precipitation float64      `json:"precipitation"`
	WindDesc      string       `json:"windDesc"`
	Summary       string       `json:"summary"`
	Thunder       bool         `json:"thunder"`
	Hours         []HourRecord `json:"hours"`
}

// ForecastResponse is the success payload of the forecast endpoint.
type ForecastResponse struct {
	Forecast     []DaySummary `json:"forecast"`
	Source       string       `json:"source"`
	MarineSource string       `json:"marine_source"`
	Updated      time.Time    `json:"updated"`
	Location     Coordinate   `json:"location"`
}

// ForecastRequest is a parsed forecast query.
type ForecastRequest struct {
	Coordinate Coordinate
	Days       int
	RequestID  string
}

// ProbeResult records one upstream health probe.
type ProbeResult struct {
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	OK        bool      `json:"ok"`
	LatencyMs int64     `json:"latencyMs"`
	Error     string    `json:"error,omitempty"`
}
