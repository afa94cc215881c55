package providers

import "github.com/i474232898/smart-mirror/internal/weather"

// Hourly rates in mm, following the usual meteorological bands.
const (
	lightRainBelow   = 2.5
	regularRainBelow = 7.6

	lightSnowBelow   = 1.0
	regularSnowBelow = 2.5
)

func rainIntensity(mmPerHour float64) weather.Intensity {
	return grade(mmPerHour, lightRainBelow, regularRainBelow)
}

func snowIntensity(mmPerHour float64) weather.Intensity {
	return grade(mmPerHour, lightSnowBelow, regularSnowBelow)
}

func grade(v, lightBelow, regularBelow float64) weather.Intensity {
	switch {
	case v <= 0:
		return weather.IntensityNone
	case v < lightBelow:
		return weather.IntensityLight
	case v < regularBelow:
		return weather.IntensityRegular
	default:
		return weather.IntensityHeavy
	}
}

func msToKmh(v float64) float64 {
	return v * 3.6
}
