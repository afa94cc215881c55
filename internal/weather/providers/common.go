package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrServerError   = errors.New("server error")
	ErrUnexpected    = errors.New("unexpected status code")
	ErrCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// DefaultBackoff is short enough to fit inside a single poll cycle.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 250 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// SingleAttempt issues one request and leaves retrying to the next poll.
var SingleAttempt = BackoffConfig{
	MaxRetries:      0,
	InitialInterval: 250 * time.Millisecond,
}

// breakerOpenTimeout must not exceed the poll delay, or a short outage
// keeps the mirror stale long after the upstream recovers.
const breakerOpenTimeout = 5 * time.Second

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     breakerOpenTimeout,
	})
}

func newHTTPConfig(client *http.Client, backoff BackoffConfig) HTTPClientConfig {
	if client == nil {
		client = http.DefaultClient
	}
	return HTTPClientConfig{Client: client, Backoff: backoff}
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and an optional circuit breaker. Any 2xx response is returned to the caller, who
// owns its body.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	log := zerolog.Ctx(ctx)

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		call := func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: %d", ErrUnexpected, resp.StatusCode)
			}
		}

		var result interface{}
		if cb != nil {
			result, err = cb.Execute(call)
		} else {
			result, err = call()
		}

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		// A 4xx other than 429 will not get better by asking again.
		if errors.Is(err, ErrUnexpected) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		log.Debug().Err(err).Str("host", req.URL.Host).Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying request")

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
