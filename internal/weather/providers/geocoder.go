package providers

import (
	"context"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/pkg/errors"

	"github.com/i474232898/sail-forecast/internal/weather"
)

// GoogleGeocoder resolves "City[,Country]" places through the Google Geocoding API.
type GoogleGeocoder struct {
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the geocoder package with apiKey. The key is
// package-global in the underlying library, so only one geocoder should exist.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{geocode: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinate{}, err
	}

	addr, ok := parsePlace(place)
	if !ok {
		return weather.Coordinate{}, errors.Errorf("empty place %q", place)
	}

	loc, err := g.geocode(addr)
	if err != nil {
		return weather.Coordinate{}, errors.Wrapf(err, "geocode %q", place)
	}
	return weather.Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

func parsePlace(place string) (geocoder.Address, bool) {
	parts := strings.SplitN(place, ",", 2)
	city := strings.TrimSpace(parts[0])
	if city == "" {
		return geocoder.Address{}, false
	}
	addr := geocoder.Address{City: city}
	if len(parts) == 2 {
		addr.Country = strings.TrimSpace(parts[1])
	}
	return addr, true
}
