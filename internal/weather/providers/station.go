package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/i474232898/smart-mirror/internal/weather"
)

// CurrentWeatherResource is the document the mirror's weather station serves.
const CurrentWeatherResource = "current-weather.json"

// StationSource reads the weather station's current-weather.json. Each Fetch
// makes exactly one request; the poller's fixed delay is the only retry.
type StationSource struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
}

func NewStationSource(client *http.Client, baseURL string) *StationSource {
	return &StationSource{
		name:    "station",
		baseURL: baseURL,
		httpCfg: newHTTPConfig(client, SingleAttempt),
	}
}

func (p *StationSource) Name() string {
	return p.name
}

func (p *StationSource) Fetch(ctx context.Context) (*weather.RawSnapshot, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("station base url is not configured")
	}

	u, err := url.JoinPath(p.baseURL, CurrentWeatherResource)
	if err != nil {
		return nil, fmt.Errorf("invalid station base url: %w", err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, nil, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return decodeSnapshot(body)
}

// decodeSnapshot treats an empty body or a JSON null as "no data".
func decodeSnapshot(body []byte) (*weather.RawSnapshot, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var raw weather.RawSnapshot
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode weather snapshot: %w", err)
	}
	return &raw, nil
}
