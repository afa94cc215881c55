package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/smart-mirror/internal/common"
	"github.com/i474232898/smart-mirror/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherSource implements weather.Source for OpenWeatherMap.
type OpenWeatherSource struct {
	name    string
	apiKey  string
	city    string
	country string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherSource(client *http.Client, apiKey, city, country string) *OpenWeatherSource {
	return &OpenWeatherSource{
		name:    "openweathermap",
		apiKey:  apiKey,
		city:    city,
		country: country,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: newHTTPConfig(client, DefaultBackoff),
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherSource) Name() string {
	return p.name
}

type openWeatherItem struct {
	Main string `json:"main"`
	Icon string `json:"icon"`
}

type openWeatherPayload struct {
	Dt     int64 `json:"dt"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneH float64 `json:"1h"`
	} `json:"snow"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Weather []openWeatherItem `json:"weather"`
}

func (p *OpenWeatherSource) Fetch(ctx context.Context) (*weather.RawSnapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}
	if p.city == "" {
		return nil, fmt.Errorf("openweather location is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		q := p.city
		if p.country != "" {
			q = fmt.Sprintf("%s,%s", p.city, p.country)
		}
		values.Set("q", q)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode openweather response: %w", err)
	}

	return mapOpenWeather(payload), nil
}

func mapOpenWeather(payload openWeatherPayload) *weather.RawSnapshot {
	raw := &weather.RawSnapshot{
		SunriseTimestamp: payload.Sys.Sunrise * 1000,
		SunsetTimestamp:  payload.Sys.Sunset * 1000,
		TimeOfDay:        weather.Day,
		Cloudiness:       payload.Clouds.All,
		WindSpeed:        msToKmh(payload.Wind.Speed),
		RainIntensity:    rainIntensity(payload.Rain.OneH),
		SnowIntensity:    snowIntensity(payload.Snow.OneH),
	}

	if openWeatherIsNight(payload) {
		raw.TimeOfDay = weather.Night
	}

	for _, item := range payload.Weather {
		if common.HasAny(item.Main, "Fog", "Mist", "Haze", "Smoke") {
			raw.Fog = true
		}
		// Reported as raining but with no measured amount yet.
		if !raw.RainIntensity.Present() && common.HasAny(item.Main, "Rain", "Drizzle", "Thunderstorm") {
			raw.RainIntensity = weather.IntensityLight
		}
		if !raw.SnowIntensity.Present() && item.Main == "Snow" {
			raw.SnowIntensity = weather.IntensityLight
		}
	}

	return raw
}

func openWeatherIsNight(payload openWeatherPayload) bool {
	if len(payload.Weather) > 0 && payload.Weather[0].Icon != "" {
		return strings.HasSuffix(payload.Weather[0].Icon, "n")
	}
	if payload.Sys.Sunrise == 0 || payload.Sys.Sunset == 0 {
		return false
	}
	return payload.Dt < payload.Sys.Sunrise || payload.Dt >= payload.Sys.Sunset
}
