package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/matryer/is"

	"github.com/i474232898/smart-mirror/internal/datetime"
	"github.com/i474232898/smart-mirror/internal/profile"
	"github.com/i474232898/smart-mirror/internal/quotes"
	"github.com/i474232898/smart-mirror/internal/store"
	"github.com/i474232898/smart-mirror/internal/weather"
)

type staticSource struct{ raw *weather.RawSnapshot }

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(ctx context.Context) (*weather.RawSnapshot, error) {
	return s.raw, nil
}

type brokenProfile struct{}

func (brokenProfile) SaveUsername(ctx context.Context, username string) error {
	return errors.New("storage offline")
}

func (brokenProfile) LoadUsername(ctx context.Context) (string, error) {
	return "", errors.New("storage offline")
}

type testEnv struct {
	app     *fiber.App
	weather *weather.Service
	quotes  *quotes.Rotator
	profile profile.Store
}

func testSetup(t *testing.T, raw *weather.RawSnapshot) testEnv {
	t.Helper()

	svc := weather.NewService(store.NewMemoryStore(), staticSource{raw: raw}, time.UTC)
	env := testEnv{
		app:     NewApp(true),
		weather: svc,
		quotes:  quotes.NewRotator([]quotes.Quote{{Author: "Seneca", Text: "Well begun."}}),
		profile: profile.NewMemoryStore(),
	}

	RegisterRoutes(env.app, Dependencies{
		Weather: env.weather,
		Clock:   datetime.NewTicker(time.UTC),
		Quotes:  env.quotes,
		Profile: env.profile,
	})
	return env
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("response is not a json object: %s", body)
		}
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, body := get(t, env.app, "/health")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["status"], "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	is.NoErr(err)
	is.Equal(resp.StatusCode, http.StatusOK)
}

func TestWeatherBeforeFirstPoll(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, body := get(t, env.app, "/api/v1/weather")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["current"], nil)
	is.Equal(body["forecast"], nil)

	resp, _ = get(t, env.app, "/api/v1/weather/current")
	is.Equal(resp.StatusCode, http.StatusNoContent)
}

func TestWeatherCurrent(t *testing.T) {
	is := is.New(t)

	sunrise := time.Date(2026, 10, 17, 6, 5, 0, 0, time.UTC).UnixMilli()
	env := testSetup(t, &weather.RawSnapshot{
		SunriseTimestamp: sunrise,
		TimeOfDay:        weather.Day,
		Cloudiness:       50,
		RainIntensity:    weather.IntensityNone,
	})
	is.NoErr(env.weather.FetchAndStore(context.Background()))

	resp, body := get(t, env.app, "/api/v1/weather/current")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["statusIcon"], "partly-cloudy-day")
	is.Equal(body["sunriseReadable"], "6:05")
	is.Equal(body["cloudiness"], 50.0)

	_, body = get(t, env.app, "/api/v1/weather")
	current, ok := body["current"].(map[string]any)
	is.True(ok)
	is.Equal(current["statusIcon"], "partly-cloudy-day")
}

func TestLayout(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, body := get(t, env.app, "/api/v1/layout?mirror_rows=3&mirror_columns=3&mirror_pos=8")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["class"], "bottom-right")

	for _, target := range []string{
		"/api/v1/layout?mirror_rows=3&mirror_columns=3",
		"/api/v1/layout?mirror_rows=3&mirror_columns=x&mirror_pos=1",
		"/api/v1/layout?mirror_rows=0&mirror_columns=3&mirror_pos=1",
		"/api/v1/layout?mirror_rows=2&mirror_columns=2&mirror_pos=4",
	} {
		resp, body := get(t, env.app, target)
		is.Equal(resp.StatusCode, http.StatusBadRequest)
		is.Equal(body["error"], true)
	}
}

func TestDatetime(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, body := get(t, env.app, "/api/v1/datetime")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(body["date"] != "")
	is.True(body["time"] != "")
}

func TestQuote(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, _ := get(t, env.app, "/api/v1/quote")
	is.Equal(resp.StatusCode, http.StatusNotFound)

	is.NoErr(env.quotes.Rotate(context.Background()))

	resp, body := get(t, env.app, "/api/v1/quote")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["author"], "Seneca")
	is.Equal(body["quote"], "Well begun.")
}

func TestUsername(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, nil)

	resp, _ := get(t, env.app, "/api/v1/username")
	is.Equal(resp.StatusCode, http.StatusNotFound)

	resp, _ = get(t, env.app, "/updateUsername")
	is.Equal(resp.StatusCode, http.StatusBadRequest)

	resp, body := get(t, env.app, "/updateUsername?username=Ada&SID=abc")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["username"], "Ada")

	_, body = get(t, env.app, "/api/v1/username")
	is.Equal(body["username"], "Ada")
}

func TestUsernameStorageFailure(t *testing.T) {
	is := is.New(t)

	app := NewApp(true)
	RegisterRoutes(app, Dependencies{
		Weather: weather.NewService(store.NewMemoryStore(), nil, nil),
		Clock:   datetime.NewTicker(nil),
		Quotes:  quotes.NewRotator(nil),
		Profile: brokenProfile{},
	})

	resp, _ := get(t, app, "/updateUsername?username=Ada")
	is.Equal(resp.StatusCode, http.StatusInternalServerError)

	resp, _ = get(t, app, "/api/v1/username")
	is.Equal(resp.StatusCode, http.StatusInternalServerError)
}
