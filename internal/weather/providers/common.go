package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BackoffConfig controls exponential backoff behaviour. MaxRetries of zero
// means a failed call is reported immediately.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ClientConfig bundles transport and resilience settings for one upstream.
type ClientConfig struct {
	Timeout        time.Duration
	RPS            float64
	Burst          int
	BreakerTimeout time.Duration
	Backoff        BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// upstream is a JSON GET endpoint guarded by a rate limiter and circuit breaker.
type upstream struct {
	name    string
	url     string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	backoff BackoffConfig
}

func newUpstream(name, url string, cfg ClientConfig) *upstream {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = time.Minute
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &upstream{
		name:   name,
		url:    url,
		client: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     breakerTimeout,

			// 4xx answers are per-request outcomes and never trip the breaker.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errUnexpected)
			},
		}),
		limiter: rate.NewLimiter(limit, burst),
		backoff: cfg.Backoff,
	}
}

// getJSON issues a GET with params and decodes a 2xx body into out.
func (u *upstream) getJSON(ctx context.Context, params map[string]string, out interface{}) error {
	body, err := u.doRequestWithResilience(ctx, params)
	if err != nil {
		return errors.Wrapf(err, "%s request", u.name)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "%s: decode response", u.name)
	}
	return nil
}

// doRequestWithResilience executes the request through the rate limiter and
// circuit breaker, retrying with exponential backoff when configured.
func (u *upstream) doRequestWithResilience(ctx context.Context, params map[string]string) ([]byte, error) {
	if u.backoff.MaxRetries < 0 || (u.backoff.MaxRetries > 0 && u.backoff.InitialInterval <= 0) {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait canceled")
		}

		result, err := u.circuit.Execute(func() (interface{}, error) {
			resp, execErr := u.client.R().
				SetContext(ctx).
				SetQueryParams(params).
				Get(u.url)
			if execErr != nil {
				return nil, execErr
			}

			status := resp.StatusCode()
			if status == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if status >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, status)
			}
			if status < 200 || status >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, status)
			}

			return resp.Body(), nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if errors.Is(err, errUnexpected) || attempt >= u.backoff.MaxRetries {
			return nil, err
		}

		delay := u.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > u.backoff.MaxInterval && u.backoff.MaxInterval > 0 {
			delay = u.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
