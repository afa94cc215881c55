package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/smart-mirror/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoSource implements weather.Source for Open-Meteo. No API key is
// needed, only coordinates.
type OpenMeteoSource struct {
	name    string
	lat     float64
	lon     float64
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoSource(client *http.Client, lat, lon float64) *OpenMeteoSource {
	return &OpenMeteoSource{
		name:    "openmeteo",
		lat:     lat,
		lon:     lon,
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: newHTTPConfig(client, DefaultBackoff),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoSource) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Current struct {
		Time        int64   `json:"time"`
		CloudCover  float64 `json:"cloud_cover"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		IsDay       int     `json:"is_day"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoSource) Fetch(ctx context.Context) (*weather.RawSnapshot, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", p.lat))
		values.Set("longitude", fmt.Sprintf("%f", p.lon))
		values.Set("current", "cloud_cover,wind_speed_10m,is_day,weather_code")
		values.Set("daily", "sunrise,sunset")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "auto")
		values.Set("forecast_days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode openmeteo response: %w", err)
	}

	return mapOpenMeteo(payload), nil
}

func mapOpenMeteo(payload openMeteoPayload) *weather.RawSnapshot {
	code := payload.Current.WeatherCode

	raw := &weather.RawSnapshot{
		TimeOfDay:     weather.Day,
		Cloudiness:    payload.Current.CloudCover,
		WindSpeed:     payload.Current.WindSpeed,
		Fog:           code == 45 || code == 48,
		RainIntensity: openMeteoRain(code),
		SnowIntensity: openMeteoSnow(code),
	}
	if payload.Current.IsDay == 0 {
		raw.TimeOfDay = weather.Night
	}
	if len(payload.Daily.Sunrise) > 0 {
		raw.SunriseTimestamp = payload.Daily.Sunrise[0] * 1000
	}
	if len(payload.Daily.Sunset) > 0 {
		raw.SunsetTimestamp = payload.Daily.Sunset[0] * 1000
	}

	return raw
}

// Based on the WMO weather interpretation codes Open-Meteo reports.
func openMeteoRain(code int) weather.Intensity {
	switch code {
	case 51, 53, 56, 61, 66, 80:
		return weather.IntensityLight
	case 55, 57, 63, 81, 95:
		return weather.IntensityRegular
	case 65, 67, 82, 96, 99:
		return weather.IntensityHeavy
	default:
		return weather.IntensityNone
	}
}

func openMeteoSnow(code int) weather.Intensity {
	switch code {
	case 71, 77, 85:
		return weather.IntensityLight
	case 73:
		return weather.IntensityRegular
	case 75, 86:
		return weather.IntensityHeavy
	default:
		return weather.IntensityNone
	}
}
