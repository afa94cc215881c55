package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var ErrNoSource = errors.New("no weather source configured")

// Service runs one fetch-derive-publish step against a source and a store.
type Service struct {
	source  Source
	store   Store
	deriver Deriver
}

// NewService creates a new Service. A nil location derives readable times in
// time.Local.
func NewService(store Store, source Source, loc *time.Location) *Service {
	return &Service{
		store:   store,
		source:  source,
		deriver: Deriver{Location: loc},
	}
}

// FetchAndStore fetches the current reading and publishes its derived form.
// A "no data" reading is published as a nil current snapshot. On error the
// store is left untouched.
func (s *Service) FetchAndStore(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", s.source.Name(), err)
	}

	snapshot := s.deriver.Derive(raw)
	if snapshot == nil {
		zerolog.Ctx(ctx).Debug().Str("source", s.source.Name()).Msg("no weather data available")
	}
	s.store.SetCurrent(snapshot)

	return nil
}

// SourceName returns the configured upstream's name, or an empty string.
func (s *Service) SourceName() string {
	if s.source == nil {
		return ""
	}
	return s.source.Name()
}

// GetCurrent delegates to the underlying store.
func (s *Service) GetCurrent() *DisplaySnapshot {
	return s.store.Current()
}

// GetView delegates to the underlying store.
func (s *Service) GetView() ViewState {
	return s.store.View()
}
