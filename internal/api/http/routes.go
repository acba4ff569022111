package httpapi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/sail-forecast/internal/weather"
)

var validate = validator.New()

// Defaults are applied when a query parameter is absent.
type Defaults struct {
	Coordinate weather.Coordinate
	Days       int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. geo may be nil,
// in which case the place parameter is ignored.
func RegisterRoutes(app *fiber.App, service *weather.Service, geo weather.Geocoder, defaults Defaults) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":    "ok",
			"service":   "sail-forecast",
			"upstreams": service.Health(),
		}

		// since=6h adds the probe history of that window.
		if raw := c.Query("since"); raw != "" {
			since, err := time.ParseDuration(raw)
			if err != nil || since <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid since %q", raw))
			}
			body["history"] = service.History(since)
		}

		return c.JSON(body)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c, geo, defaults); err != nil {
			return err
		}

		resp, err := service.GetForecast(c.UserContext(), weather.ForecastRequest{
			Coordinate: q.Coordinate,
			Days:       q.Days,
			RequestID:  c.GetRespHeader(fiber.HeaderXRequestID),
		})
		if err != nil {
			return err
		}

		return c.JSON(resp)
	})

	v1.Options("/forecast", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// forecastQuery holds the parsed query parameters of the forecast endpoint.
type forecastQuery struct {
	Coordinate weather.Coordinate
	Days       int `validate:"gte=1"`
}

func (q *forecastQuery) bind(c *fiber.Ctx, geo weather.Geocoder, defaults Defaults) error {
	latStr := strings.TrimSpace(c.Query("lat"))
	lonStr := strings.TrimSpace(c.Query("lon"))
	place := strings.TrimSpace(c.Query("place"))

	q.Coordinate = defaults.Coordinate
	q.Days = defaults.Days

	switch {
	case latStr == "" && lonStr == "" && place != "" && geo != nil:
		coord, err := geo.Resolve(c.UserContext(), place)
		if err != nil {
			return fmt.Errorf("%w: %v", weather.ErrInvalidCoordinate, err)
		}
		q.Coordinate = coord
	default:
		if latStr != "" {
			v, err := parseFinite(latStr)
			if err != nil {
				return fmt.Errorf("%w: lat %q", weather.ErrInvalidCoordinate, latStr)
			}
			q.Coordinate.Latitude = v
		}
		if lonStr != "" {
			v, err := parseFinite(lonStr)
			if err != nil {
				return fmt.Errorf("%w: lon %q", weather.ErrInvalidCoordinate, lonStr)
			}
			q.Coordinate.Longitude = v
		}
	}

	if daysStr := strings.TrimSpace(c.Query("days")); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil {
			return fmt.Errorf("%w: %q", weather.ErrInvalidDays, daysStr)
		}
		q.Days = d
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Days" {
			return fmt.Errorf("%w: must be a positive integer", weather.ErrInvalidDays)
		}
		return fmt.Errorf("%w: %v", weather.ErrInvalidCoordinate, err)
	}
	return nil
}

// parseFinite parses a float and rejects NaN and ±Inf.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
