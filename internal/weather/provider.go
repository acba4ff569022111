package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCoordinate is returned for malformed or non-finite lat/lon input.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidDays is returned when the forecast horizon is not a positive integer.
	ErrInvalidDays = errors.New("invalid forecast days")
	// ErrUpstreamUnavailable is returned when the primary forecast provider fails.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ForecastProvider is the primary atmospheric forecast source.
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, coord Coordinate, days int) (*ForecastFrames, error)
}

// MarineProvider is the secondary wave forecast source. Its failures are never fatal.
type MarineProvider interface {
	Name() string
	FetchMarine(ctx context.Context, coord Coordinate, days int) (*MarineFrame, error)
}

// Geocoder resolves a free-text place into a coordinate.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Coordinate, error)
}

// ProbeStore is the contract the in-memory probe history must satisfy.
type ProbeStore interface {
	Save(result ProbeResult)
	Latest(provider string) (ProbeResult, error)
	Range(provider string, from, to time.Time) ([]ProbeResult, error)
}
