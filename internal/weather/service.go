package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// PrimarySource describes the atmospheric forecast provider.
	PrimarySource = "Open-Meteo Forecast API"
	// MarineSource is reported when real wave data was merged.
	MarineSource = "Open-Meteo Marine API"
	// EstimatedMarineSource is reported when waves were estimated from wind.
	EstimatedMarineSource = "Estimated from wind speed (marine data unavailable)"
)

// Settings tunes the forecast pipeline.
type Settings struct {
	// MaxDays caps the requested horizon.
	MaxDays int
	// ProbeCoordinate is where upstream health probes are pointed.
	ProbeCoordinate Coordinate
}

// Service runs the forecast pipeline: fetch both providers, merge waves, and
// build the per-day summaries. It also probes upstream health for /health.
type Service struct {
	store    ProbeStore
	forecast ForecastProvider
	marine   MarineProvider
	settings Settings
	now      func() time.Time
	log      *logrus.Entry
}

// NewService creates a new Service. marine may be nil, in which case waves are
// always estimated.
func NewService(store ProbeStore, forecast ForecastProvider, marine MarineProvider, settings Settings) *Service {
	if settings.MaxDays <= 0 {
		settings.MaxDays = 16
	}
	return &Service{
		store:    store,
		forecast: forecast,
		marine:   marine,
		settings: settings,
		now:      time.Now,
		log:      logrus.WithField("component", "weather"),
	}
}

// GetForecast fetches both upstreams concurrently and builds the response.
// A marine failure only switches the pipeline to estimated waves; a primary
// failure is returned wrapped in ErrUpstreamUnavailable.
func (s *Service) GetForecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	if req.Days <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, req.Days)
	}
	days := min(req.Days, s.settings.MaxDays)

	log := s.log.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"lat":        req.Coordinate.Latitude,
		"lon":        req.Coordinate.Longitude,
		"days":       days,
	})

	var (
		wg        sync.WaitGroup
		frames    *ForecastFrames
		marine    *MarineFrame
		primErr   error
		marineErr error
	)

	// Each goroutine owns its own result pair; neither cancels the other.
	wg.Add(1)
	go func() {
		defer wg.Done()
		frames, primErr = s.forecast.FetchForecast(ctx, req.Coordinate, days)
	}()

	if s.marine != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			marine, marineErr = s.marine.FetchMarine(ctx, req.Coordinate, days)
		}()
	}

	wg.Wait()

	if primErr != nil {
		log.WithError(primErr).Errorf("provider %s forecast failed", s.forecast.Name())
		if errors.Is(primErr, ErrUpstreamUnavailable) {
			return nil, primErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, s.forecast.Name(), primErr)
	}
	if frames == nil || frames.Hourly.Len() == 0 {
		log.Error("primary forecast has no hourly time series")
		return nil, fmt.Errorf("%w: missing hourly time series", ErrUpstreamUnavailable)
	}
	if marineErr != nil {
		log.WithError(marineErr).Warnf("provider %s marine failed; estimating waves", s.marine.Name())
		marine = nil
	}

	waves, usedMarine := MergeWaves(frames.Hourly, marine)
	if marine != nil && !usedMarine {
		log.Warn("marine grid does not line up with forecast grid; estimating waves")
	}

	marineSource := EstimatedMarineSource
	if usedMarine {
		marineSource = MarineSource
	}

	resp := &ForecastResponse{
		Forecast:     BuildDays(frames.Hourly, frames.Daily, waves),
		Source:       PrimarySource,
		MarineSource: marineSource,
		Updated:      s.now().UTC(),
		Location:     req.Coordinate,
	}
	log.WithField("marine", usedMarine).Debugf("built %d forecast days", len(resp.Forecast))
	return resp, nil
}

// ProbeUpstreams calls each configured provider once with a one-day horizon
// and records the outcome in the probe store.
func (s *Service) ProbeUpstreams(ctx context.Context) []ProbeResult {
	type probe struct {
		name string
		call func(context.Context) error
	}

	coord := s.settings.ProbeCoordinate
	probes := []probe{{
		name: s.forecast.Name(),
		call: func(ctx context.Context) error {
			_, err := s.forecast.FetchForecast(ctx, coord, 1)
			return err
		},
	}}
	if s.marine != nil {
		probes = append(probes, probe{
			name: s.marine.Name(),
			call: func(ctx context.Context) error {
				_, err := s.marine.FetchMarine(ctx, coord, 1)
				return err
			},
		})
	}

	results := make([]ProbeResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := s.now()
			err := p.call(ctx)
			res := ProbeResult{
				Provider:  p.name,
				Timestamp: start.UTC(),
				OK:        err == nil,
				LatencyMs: s.now().Sub(start).Milliseconds(),
			}
			if err != nil {
				res.Error = err.Error()
				s.log.WithError(err).Warnf("probe of %s failed", p.name)
			}
			results[i] = res
		}()
	}
	wg.Wait()

	if s.store != nil {
		for _, r := range results {
			s.store.Save(r)
		}
	}
	return results
}

// History returns the probes recorded per provider over the last since.
// Providers without probes in that window map to an empty slice.
func (s *Service) History(since time.Duration) map[string][]ProbeResult {
	out := make(map[string][]ProbeResult)
	for _, name := range s.providerNames() {
		out[name] = []ProbeResult{}
	}
	if s.store == nil {
		return out
	}

	to := s.now().UTC()
	from := to.Add(-since)
	for name := range out {
		results, err := s.store.Range(name, from, to)
		if err != nil {
			continue
		}
		out[name] = results
	}
	return out
}

func (s *Service) providerNames() []string {
	names := []string{s.forecast.Name()}
	if s.marine != nil {
		names = append(names, s.marine.Name())
	}
	return names
}

// Health returns the latest probe per provider. Providers never probed are omitted.
func (s *Service) Health() []ProbeResult {
	if s.store == nil {
		return nil
	}
	var out []ProbeResult
	for _, name := range s.providerNames() {
		r, err := s.store.Latest(name)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
