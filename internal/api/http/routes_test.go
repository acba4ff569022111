package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/sail-forecast/internal/store"
	"github.com/i474232898/sail-forecast/internal/weather"
	"github.com/i474232898/sail-forecast/internal/weather/providers"
)

const (
	testCacheControl = "public, max-age=0, s-maxage=10800, stale-while-revalidate=3600"

	scenarioForecast = `{
  "hourly": {
    "time": ["2026-10-19T10:00", "2026-10-19T11:00"],
    "temperature_2m": [17, 18],
    "precipitation": [0, 0],
    "cloud_cover": [80, 80],
    "wind_speed_10m": [18, 22],
    "wind_direction_10m": [180, 180],
    "wind_gusts_10m": [25, 30],
    "weathercode": [0, 0]
  },
  "daily": {
    "time": ["2026-10-19"],
    "temperature_2m_max": [20],
    "temperature_2m_min": [10],
    "precipitation_sum": [0]
  }
}`
)

type upstreams struct {
	forecast     *httptest.Server
	marine       *httptest.Server
	forecastHits atomic.Int32
	marineHits   atomic.Int32
	lastDays     atomic.Value
}

func newUpstreams(t *testing.T, forecastStatus, marineStatus int, marineBody string) *upstreams {
	t.Helper()
	u := &upstreams{}
	u.forecast = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.forecastHits.Add(1)
		u.lastDays.Store(r.URL.Query().Get("forecast_days"))
		w.WriteHeader(forecastStatus)
		if forecastStatus == http.StatusOK {
			w.Write([]byte(scenarioForecast))
		}
	}))
	u.marine = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.marineHits.Add(1)
		w.WriteHeader(marineStatus)
		w.Write([]byte(marineBody))
	}))
	t.Cleanup(u.forecast.Close)
	t.Cleanup(u.marine.Close)
	return u
}

type fakeGeocoder struct{}

func (fakeGeocoder) Resolve(_ context.Context, place string) (weather.Coordinate, error) {
	if place == "Williamstown" {
		return weather.Coordinate{Latitude: -37.86, Longitude: 144.9}, nil
	}
	return weather.Coordinate{}, errors.New("ZERO_RESULTS")
}

func newTestApp(u *upstreams) *fiber.App {
	cfg := providers.ClientConfig{Timeout: 2 * time.Second}
	svc := weather.NewService(
		store.NewMemoryStore(10, time.Hour),
		providers.NewOpenMeteoProvider(u.forecast.URL, "auto", cfg),
		providers.NewOpenMeteoMarineProvider(u.marine.URL, "auto", cfg),
		weather.Settings{MaxDays: 16},
	)

	app := NewApp(AppOptions{CacheControl: testCacheControl})
	RegisterRoutes(app, svc, fakeGeocoder{}, Defaults{
		Coordinate: weather.Coordinate{Latitude: -37.8676, Longitude: 144.9741},
		Days:       7,
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestForecastMarineFailureStillSucceeds(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusInternalServerError, `{"error": true}`)
	app := newTestApp(u)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out weather.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, weather.EstimatedMarineSource, out.MarineSource)
	assert.Equal(t, weather.PrimarySource, out.Source)
	assert.Equal(t, -37.8676, out.Location.Latitude)
	assert.False(t, out.Updated.IsZero())
	assert.Equal(t, "7", u.lastDays.Load())

	require.Len(t, out.Forecast, 1)
	day := out.Forecast[0]
	assert.Equal(t, "Cloudy.", day.Summary)
	assert.Equal(t, "S 10–12 kts", day.WindDesc)
	require.Len(t, day.Hours, 2)
	assert.Equal(t, 0.2, day.Hours[0].WaveHeight)
	assert.Equal(t, 0.38, day.Hours[1].WaveHeight)
	assert.False(t, day.Hours[0].Thunder)

	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, testCacheControl, resp.Header.Get(fiber.HeaderCacheControl))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestForecastUsesMarineData(t *testing.T) {
	marine := `{"hourly": {"time": ["2026-10-19T10:00", "2026-10-19T11:00"], "wave_height": [0.912, 1.1], "wave_period": [6.4, 7]}}`
	u := newUpstreams(t, http.StatusOK, http.StatusOK, marine)
	app := newTestApp(u)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast?lat=-38.1&lon=144.36&days=30")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out weather.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, weather.MarineSource, out.MarineSource)
	assert.Equal(t, 0.91, out.Forecast[0].Hours[0].WaveHeight)
	assert.Equal(t, 6, out.Forecast[0].Hours[0].WavePeriod)
	assert.Equal(t, -38.1, out.Location.Latitude)
	assert.Equal(t, "16", u.lastDays.Load())
}

func TestForecastInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		query string
		code  string
	}{
		{"non-numeric lat", "lat=abc", "invalid_coordinate"},
		{"non-finite lon", "lon=Inf", "invalid_coordinate"},
		{"NaN lat", "lat=NaN", "invalid_coordinate"},
		{"out of range lat", "lat=91&lon=0", "invalid_coordinate"},
		{"out of range lon", "lat=0&lon=-181", "invalid_coordinate"},
		{"unknown place", "place=Atlantis", "invalid_coordinate"},
		{"non-integer days", "days=two", "invalid_days"},
		{"zero days", "days=0", "invalid_days"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUpstreams(t, http.StatusOK, http.StatusOK, `{}`)
			app := newTestApp(u)

			resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast?"+tc.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var eb errorBody
			require.NoError(t, json.Unmarshal(body, &eb))
			assert.Equal(t, tc.code, eb.Error)
			assert.NotEmpty(t, eb.Message)
			assert.Equal(t, int32(0), u.forecastHits.Load())
			assert.Equal(t, int32(0), u.marineHits.Load())
			assert.Equal(t, testCacheControl, resp.Header.Get(fiber.HeaderCacheControl))
			assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		})
	}
}

func TestForecastPlaceIsGeocoded(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusInternalServerError, ``)
	app := newTestApp(u)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast?place=Williamstown")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out weather.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, weather.Coordinate{Latitude: -37.86, Longitude: 144.9}, out.Location)
}

func TestForecastPrimaryFailure(t *testing.T) {
	u := newUpstreams(t, http.StatusInternalServerError, http.StatusOK, `{}`)
	app := newTestApp(u)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var eb errorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	assert.Equal(t, "upstream_unavailable", eb.Error)
	assert.Equal(t, testCacheControl, resp.Header.Get(fiber.HeaderCacheControl))
}

func TestForecastOptionsAndMethods(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusOK, `{}`)
	app := newTestApp(u)

	resp, body := doRequest(t, app, http.MethodOptions, "/api/v1/forecast")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/forecast", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://example.com")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodGet)
	pre, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, pre.StatusCode)
	assert.Equal(t, "*", pre.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, testCacheControl, pre.Header.Get(fiber.HeaderCacheControl))

	resp, body = doRequest(t, app, http.MethodPost, "/api/v1/forecast")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var eb errorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	assert.Equal(t, "method_not_allowed", eb.Error)
	assert.Equal(t, int32(0), u.forecastHits.Load())
}

func TestHealthReportsProbes(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusInternalServerError, `{}`)
	cfg := providers.ClientConfig{Timeout: 2 * time.Second}
	svc := weather.NewService(
		store.NewMemoryStore(10, time.Hour),
		providers.NewOpenMeteoProvider(u.forecast.URL, "auto", cfg),
		providers.NewOpenMeteoMarineProvider(u.marine.URL, "auto", cfg),
		weather.Settings{},
	)
	svc.ProbeUpstreams(context.Background())

	app := NewApp(AppOptions{})
	RegisterRoutes(app, svc, nil, Defaults{Days: 7})

	resp, body := doRequest(t, app, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Status    string                `json:"status"`
		Upstreams []weather.ProbeResult `json:"upstreams"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "ok", out.Status)
	require.Len(t, out.Upstreams, 2)
	assert.True(t, out.Upstreams[0].OK)
	assert.False(t, out.Upstreams[1].OK)
}

func TestClassify(t *testing.T) {
	status, code := classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)

	status, code = classify(fiber.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", code)
}

func TestForecastInlandMarineRejectionsDoNotLeak(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusOK, ``)
	u.marine = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.marineHits.Add(1)
		if r.URL.Query().Get("latitude") == "10.0000" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": true, "reason": "No data is available for this location"}`))
			return
		}
		w.Write([]byte(`{"hourly": {"time": ["2026-10-19T10:00", "2026-10-19T11:00"], "wave_height": [0.9, 1.0], "wave_period": [6, 7]}}`))
	}))
	t.Cleanup(u.marine.Close)
	app := newTestApp(u)

	for i := 0; i < 8; i++ {
		resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast?lat=10&lon=20")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var out weather.ForecastResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, weather.EstimatedMarineSource, out.MarineSource)
	}

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out weather.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, weather.MarineSource, out.MarineSource)
	assert.Equal(t, 0.9, out.Forecast[0].Hours[0].WaveHeight)
	assert.Equal(t, int32(9), u.marineHits.Load())
}

func TestHealthHistory(t *testing.T) {
	u := newUpstreams(t, http.StatusOK, http.StatusOK, `{"hourly": {"time": ["2026-10-19T10:00"], "wave_height": [0.5]}}`)
	cfg := providers.ClientConfig{Timeout: 2 * time.Second}
	svc := weather.NewService(
		store.NewMemoryStore(10, time.Hour),
		providers.NewOpenMeteoProvider(u.forecast.URL, "auto", cfg),
		providers.NewOpenMeteoMarineProvider(u.marine.URL, "auto", cfg),
		weather.Settings{},
	)
	svc.ProbeUpstreams(context.Background())
	svc.ProbeUpstreams(context.Background())

	app := NewApp(AppOptions{})
	RegisterRoutes(app, svc, nil, Defaults{Days: 7})

	resp, body := doRequest(t, app, http.MethodGet, "/health?since=1h")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		History map[string][]weather.ProbeResult `json:"history"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.History["openmeteo"], 2)
	assert.Len(t, out.History["openmeteo-marine"], 2)

	resp, body = doRequest(t, app, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), `"history"`)

	for _, bad := range []string{"soon", "-1h", "0s"} {
		resp, body = doRequest(t, app, http.MethodGet, "/health?since="+bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)

		var eb errorBody
		require.NoError(t, json.Unmarshal(body, &eb))
		assert.Equal(t, "bad_request", eb.Error)
	}
}
