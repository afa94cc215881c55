package weather

import (
	"fmt"
	"time"
)

const (
	partlyCloudyAbove = 30
	cloudyAbove       = 70
	windyAbove        = 10
)

// Deriver turns raw readings into display snapshots. Location is the time
// zone used for the readable sunrise and sunset; nil means time.Local.
type Deriver struct {
	Location *time.Location
}

// Derive uses the process time zone.
func Derive(raw *RawSnapshot) *DisplaySnapshot {
	return Deriver{}.Derive(raw)
}

// Derive returns nil when there is no reading.
func (d Deriver) Derive(raw *RawSnapshot) *DisplaySnapshot {
	if raw == nil {
		return nil
	}

	loc := d.Location
	if loc == nil {
		loc = time.Local
	}

	return &DisplaySnapshot{
		RawSnapshot:     *raw,
		SunriseReadable: readableTime(raw.SunriseTimestamp, loc),
		SunsetReadable:  readableTime(raw.SunsetTimestamp, loc),
		StatusIcon:      StatusIcon(*raw),
	}
}

// StatusIcon walks the override chain in order; a later matching rule
// replaces whatever an earlier one picked.
func StatusIcon(raw RawSnapshot) Icon {
	night := raw.TimeOfDay == Night

	icon := IconClearDay
	if night {
		icon = IconClearNight
	}
	if raw.Cloudiness > partlyCloudyAbove {
		icon = IconPartlyCloudyDay
		if night {
			icon = IconPartlyCloudyNight
		}
	}
	if raw.Cloudiness > cloudyAbove {
		icon = IconCloudy
	}
	if raw.Fog {
		icon = IconFog
	}
	if raw.WindSpeed > windyAbove {
		icon = IconWind
	}
	switch raw.RainIntensity {
	case IntensityLight, IntensityRegular:
		icon = IconRain
	case IntensityHeavy:
		icon = IconSleet
	}
	if raw.SnowIntensity.Present() {
		icon = IconSnow
	}

	return icon
}

// readableTime renders H:MM on a 24-hour clock.
func readableTime(ms int64, loc *time.Location) string {
	t := time.UnixMilli(ms).In(loc)
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
