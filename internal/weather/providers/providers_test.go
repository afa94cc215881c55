package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/smart-mirror/internal/weather"
	"github.com/matryer/is"
)

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func newTestServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStationSourceDecodesSnapshot(t *testing.T) {
	is := is.New(t)

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(stationData))
	}))
	defer srv.Close()

	src := NewStationSource(srv.Client(), srv.URL+"/mirror")
	raw, err := src.Fetch(context.Background())
	is.NoErr(err)

	is.Equal(path, "/mirror/current-weather.json")
	is.Equal(raw.SunriseTimestamp, int64(1760678700000))
	is.Equal(raw.TimeOfDay, weather.Night)
	is.Equal(raw.Cloudiness, 45.0)
	is.True(raw.Fog)
	is.Equal(raw.WindSpeed, 12.5)
	is.Equal(raw.RainIntensity, weather.IntensityRegular)
	is.Equal(raw.SnowIntensity, weather.Intensity(""))
}

func TestStationSourceNoData(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"json null":  {http.StatusOK, "null"},
		"null ws":    {http.StatusOK, " null\n"},
		"empty body": {http.StatusOK, ""},
		"no content": {http.StatusNoContent, ""},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			srv := newTestServer(t, tc.status, tc.body, nil)

			raw, err := NewStationSource(srv.Client(), srv.URL).Fetch(context.Background())
			is.NoErr(err)
			is.True(raw == nil)
		})
	}
}

func TestStationSourceMakesOneRequestPerFetch(t *testing.T) {
	is := is.New(t)

	var calls int32
	srv := newTestServer(t, http.StatusInternalServerError, "", &calls)

	_, err := NewStationSource(srv.Client(), srv.URL).Fetch(context.Background())
	is.True(errors.Is(err, ErrServerError))
	is.Equal(atomic.LoadInt32(&calls), int32(1))
}

func TestStationSourceRecoversAfterOutage(t *testing.T) {
	is := is.New(t)

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(stationData))
	}))
	defer srv.Close()

	src := NewStationSource(srv.Client(), srv.URL)

	for range 2 {
		raw, err := src.Fetch(context.Background())
		is.True(errors.Is(err, ErrServerError))
		is.True(raw == nil)
	}

	raw, err := src.Fetch(context.Background())
	is.NoErr(err)
	is.True(raw != nil)
	is.Equal(raw.TimeOfDay, weather.Night)
	is.Equal(atomic.LoadInt32(&calls), int32(3))
}

func TestResilientRequestRetriesServerErrors(t *testing.T) {
	is := is.New(t)

	var calls int32
	srv := newTestServer(t, http.StatusInternalServerError, "", &calls)

	cfg := newHTTPConfig(srv.Client(), fastBackoff)
	_, err := doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("test"), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	})
	is.True(errors.Is(err, ErrServerError))
	is.Equal(atomic.LoadInt32(&calls), int32(3))
}

func TestBreakerReopensWithinPollDelay(t *testing.T) {
	is := is.New(t)
	is.True(breakerOpenTimeout <= 5*time.Second)
}

func TestStationSourceDoesNotRetryClientErrors(t *testing.T) {
	is := is.New(t)

	var calls int32
	srv := newTestServer(t, http.StatusNotFound, "", &calls)

	src := NewStationSource(srv.Client(), srv.URL)
	src.httpCfg.Backoff = fastBackoff

	_, err := src.Fetch(context.Background())
	is.True(errors.Is(err, ErrUnexpected))
	is.Equal(atomic.LoadInt32(&calls), int32(1))
}

func TestStationSourceRejectsGarbage(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t, http.StatusOK, "{not json", nil)

	_, err := NewStationSource(srv.Client(), srv.URL).Fetch(context.Background())
	is.True(err != nil)
}

func TestStationSourceRequiresBaseURL(t *testing.T) {
	is := is.New(t)
	_, err := NewStationSource(nil, "").Fetch(context.Background())
	is.True(err != nil)
}

func TestOpenWeatherSourceMapsPayload(t *testing.T) {
	is := is.New(t)

	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		w.Write([]byte(openWeatherData))
	}))
	defer srv.Close()

	src := NewOpenWeatherSource(srv.Client(), "key", "Sundsvall", "SE")
	src.baseURL = srv.URL

	raw, err := src.Fetch(context.Background())
	is.NoErr(err)

	is.Equal(query, "Sundsvall,SE")
	is.Equal(raw.SunriseTimestamp, int64(1760678700)*1000)
	is.Equal(raw.SunsetTimestamp, int64(1760716200)*1000)
	is.Equal(raw.TimeOfDay, weather.Night)
	is.Equal(raw.Cloudiness, 75.0)
	is.Equal(raw.WindSpeed, 18.0) // 5 m/s
	is.True(raw.Fog)
	is.Equal(raw.RainIntensity, weather.IntensityRegular)
	is.Equal(raw.SnowIntensity, weather.IntensityNone)
}

func TestOpenWeatherDayNightFallback(t *testing.T) {
	is := is.New(t)

	p := openWeatherPayload{Dt: 1500}
	p.Sys.Sunrise = 1000
	p.Sys.Sunset = 2000
	is.Equal(mapOpenWeather(p).TimeOfDay, weather.Day)

	p.Dt = 2000
	is.Equal(mapOpenWeather(p).TimeOfDay, weather.Night)
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	is := is.New(t)
	_, err := NewOpenWeatherSource(nil, "", "Sundsvall", "SE").Fetch(context.Background())
	is.True(err != nil)
}

func TestOpenMeteoSourceMapsPayload(t *testing.T) {
	is := is.New(t)

	var current string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current = r.URL.Query().Get("current")
		w.Write([]byte(openMeteoData))
	}))
	defer srv.Close()

	src := NewOpenMeteoSource(srv.Client(), 62.39, 17.31)
	src.baseURL = srv.URL

	raw, err := src.Fetch(context.Background())
	is.NoErr(err)

	is.Equal(current, "cloud_cover,wind_speed_10m,is_day,weather_code")
	is.Equal(raw.TimeOfDay, weather.Day)
	is.Equal(raw.Cloudiness, 100.0)
	is.Equal(raw.WindSpeed, 7.2)
	is.Equal(raw.SnowIntensity, weather.IntensityHeavy)
	is.Equal(raw.RainIntensity, weather.IntensityNone)
	is.Equal(raw.SunriseTimestamp, int64(1760678700)*1000)
	is.Equal(weather.StatusIcon(*raw), weather.IconSnow)
}

func TestOpenMeteoCodes(t *testing.T) {
	is := is.New(t)

	is.Equal(openMeteoRain(61), weather.IntensityLight)
	is.Equal(openMeteoRain(63), weather.IntensityRegular)
	is.Equal(openMeteoRain(65), weather.IntensityHeavy)
	is.Equal(openMeteoRain(0), weather.IntensityNone)
	is.Equal(openMeteoSnow(73), weather.IntensityRegular)

	var p openMeteoPayload
	p.Current.WeatherCode = 45
	is.True(mapOpenMeteo(p).Fog)
	is.Equal(mapOpenMeteo(p).TimeOfDay, weather.Night) // is_day 0
}

func TestIntensityBands(t *testing.T) {
	is := is.New(t)

	is.Equal(rainIntensity(0), weather.IntensityNone)
	is.Equal(rainIntensity(0.2), weather.IntensityLight)
	is.Equal(rainIntensity(2.5), weather.IntensityRegular)
	is.Equal(rainIntensity(7.6), weather.IntensityHeavy)
	is.Equal(snowIntensity(0.5), weather.IntensityLight)
	is.Equal(snowIntensity(3), weather.IntensityHeavy)
}

const stationData string = `{
	"sunriseTimestamp": 1760678700000,
	"sunsetTimestamp": 1760716200000,
	"timeOfDay": "Night",
	"cloudiness": 45,
	"fog": true,
	"windSpeed": 12.5,
	"rainIntensity": "Regular",
	"snowIntensity": null
}`

const openWeatherData string = `{
	"dt": 1760720000,
	"weather": [{"main": "Mist", "icon": "50n"}, {"main": "Rain", "icon": "10n"}],
	"clouds": {"all": 75},
	"wind": {"speed": 5},
	"rain": {"1h": 3.1},
	"sys": {"sunrise": 1760678700, "sunset": 1760716200}
}`

const openMeteoData string = `{
	"current": {"time": 1760700000, "cloud_cover": 100, "wind_speed_10m": 7.2, "is_day": 1, "weather_code": 75},
	"daily": {"time": [1760652000], "sunrise": [1760678700], "sunset": [1760716200]}
}`
