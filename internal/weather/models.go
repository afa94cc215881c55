package weather

import "encoding/json"

// TimeOfDay tells whether a reading was taken during the day or at night.
type TimeOfDay string

const (
	Day   TimeOfDay = "Day"
	Night TimeOfDay = "Night"
)

// Intensity grades rain and snow. The zero value means no precipitation.
type Intensity string

const (
	IntensityNone    Intensity = "None"
	IntensityLight   Intensity = "Light"
	IntensityRegular Intensity = "Regular"
	IntensityHeavy   Intensity = "Heavy"
)

// Present reports whether the intensity describes actual precipitation.
func (i Intensity) Present() bool {
	return i != "" && i != IntensityNone
}

// Icon names a status sprite on the mirror.
type Icon string

const (
	IconClearNight        Icon = "clear-night"
	IconClearDay          Icon = "clear-day"
	IconPartlyCloudyNight Icon = "partly-cloudy-night"
	IconPartlyCloudyDay   Icon = "partly-cloudy-day"
	IconCloudy            Icon = "cloudy"
	IconFog               Icon = "fog"
	IconWind              Icon = "wind"
	IconRain              Icon = "rain"
	IconSleet             Icon = "sleet"
	IconSnow              Icon = "snow"
)

// RawSnapshot is a single reading as delivered by the weather endpoint.
// Timestamps are epoch milliseconds.
type RawSnapshot struct {
	SunriseTimestamp int64     `json:"sunriseTimestamp"`
	SunsetTimestamp  int64     `json:"sunsetTimestamp"`
	TimeOfDay        TimeOfDay `json:"timeOfDay"`
	Cloudiness       float64   `json:"cloudiness"`
	Fog              bool      `json:"fog"`
	WindSpeed        float64   `json:"windSpeed"`
	RainIntensity    Intensity `json:"rainIntensity,omitempty"`
	SnowIntensity    Intensity `json:"snowIntensity,omitempty"`
}

// DisplaySnapshot is the view-ready form of a RawSnapshot.
type DisplaySnapshot struct {
	RawSnapshot

	SunriseReadable string `json:"sunriseReadable"`
	SunsetReadable  string `json:"sunsetReadable"`
	StatusIcon      Icon   `json:"statusIcon"`
}

// ViewState is what the rendering layer binds to. Forecast is never
// populated by the poller and is kept for template compatibility.
type ViewState struct {
	Current  *DisplaySnapshot `json:"current"`
	Forecast json.RawMessage  `json:"forecast"`
}
