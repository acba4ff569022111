package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/sail-forecast/internal/weather"
)

// AppOptions configures the Fiber app shared by main and tests.
type AppOptions struct {
	CacheControl string
	AccessLog    bool
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewApp builds the Fiber app with the error handler and global middleware.
func NewApp(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sail-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path}?${queryParams} ${latency} ${respHeader:X-Request-ID}\n",
		}))
	}
	if opts.CacheControl != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderCacheControl, opts.CacheControl)
			return c.Next()
		})
	}
	// cors answers preflights itself, so Cache-Control must already be set.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
	}))

	return app
}

// errorHandler maps domain errors to status codes and writes {error, message}.
func errorHandler(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	return c.Status(status).JSON(errorBody{
		Error:   code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, weather.ErrInvalidCoordinate):
		return fiber.StatusBadRequest, "invalid_coordinate"
	case errors.Is(err, weather.ErrInvalidDays):
		return fiber.StatusBadRequest, "invalid_days"
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway, "upstream_unavailable"
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
		return fe.Code, statusCode(fe.Code)
	}
	return fiber.StatusInternalServerError, "internal_error"
}

// statusCode turns 405 into "method_not_allowed".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
