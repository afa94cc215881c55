package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/i474232898/smart-mirror/internal/metrics"
	"github.com/i474232898/smart-mirror/internal/weather"
	"github.com/rs/zerolog"
)

const (
	// DefaultPollDelay is the pause between the end of one poll cycle and
	// the start of the next.
	DefaultPollDelay    = 5 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

var ErrPollerRunning = errors.New("poller already running")

// Clock is the poller's view of time.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Poller keeps the weather view state fresh. Each cycle fetches, derives and
// publishes, then waits a fixed delay. Cycles never overlap, so snapshots are
// published in the order their fetches completed. A failed cycle is logged
// and the next one is scheduled as usual.
type Poller struct {
	service      *weather.Service
	clock        Clock
	delay        time.Duration
	fetchTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type PollerOption func(*Poller)

func WithClock(c Clock) PollerOption {
	return func(p *Poller) { p.clock = c }
}

func WithDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.delay = d
		}
	}
}

func WithFetchTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// NewPoller creates a new Poller.
func NewPoller(service *weather.Service, opts ...PollerOption) *Poller {
	p := &Poller{
		service:      service,
		clock:        realClock{},
		delay:        DefaultPollDelay,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start issues the first fetch right away and keeps polling in the background
// until ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrPollerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	zerolog.Ctx(ctx).Info().Str("source", p.service.SourceName()).Dur("delay", p.delay).Msg("starting weather poller")

	go func() {
		defer close(done)
		p.run(ctx)

		// A cancelled parent ends the loop without Stop; release the handle
		// so the poller can be started again.
		p.mu.Lock()
		if p.done == done {
			p.cancel, p.done = nil, nil
		}
		p.mu.Unlock()
		cancel()
	}()

	return nil
}

// Stop cancels the polling loop and waits for the running cycle to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context) {
	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Info().Msg("weather poller stopped")
			return
		case <-p.clock.After(p.delay):
		}
	}
}

// poll runs one cycle. It never panics so the loop always reaches its wait.
func (p *Poller) poll(ctx context.Context) {
	source := p.service.SourceName()
	log := zerolog.Ctx(ctx).With().Str("cycle", uuid.NewString()).Str("source", source).Logger()

	start := p.clock.Now()
	outcome := metrics.OutcomeFailure

	defer func() {
		if r := recover(); r != nil {
			log.Error().Err(fmt.Errorf("panic: %v", r)).Msg("weather poll cycle panicked")
			outcome = metrics.OutcomeFailure
		}
		metrics.RecordPoll(source, outcome, p.clock.Now().Sub(start))
	}()

	cycleCtx, cancel := context.WithTimeout(log.WithContext(ctx), p.fetchTimeout)
	defer cancel()

	if err := p.service.FetchAndStore(cycleCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("failed to fetch weather, keeping last snapshot")
		return
	}

	if p.service.GetCurrent() == nil {
		outcome = metrics.OutcomeNoData
		return
	}
	outcome = metrics.OutcomeSnapshot
	log.Debug().Msg("published weather snapshot")
}
