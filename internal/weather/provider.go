package weather

import (
	"context"
)

// Source abstracts an upstream reporting the current weather (the mirror's
// weather station, OpenWeatherMap, Open-Meteo). A nil snapshot with a nil
// error means the upstream has no data right now.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*RawSnapshot, error)
}

// Store is the contract the view-state store must satisfy.
type Store interface {
	SetCurrent(snapshot *DisplaySnapshot)
	Current() *DisplaySnapshot
	View() ViewState
}
