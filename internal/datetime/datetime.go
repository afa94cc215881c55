// Package datetime backs the mirror's clock widget.
package datetime

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Reading is what the clock widget shows.
type Reading struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Format renders t as e.g. {"17, Oct 2026", "09:05:03"}.
func Format(t time.Time) Reading {
	return Reading{
		Date: fmt.Sprintf("%d, %s %d", t.Day(), t.Format("Jan"), t.Year()),
		Time: t.Format("15:04:05"),
	}
}

// Ticker holds the latest clock reading. Tick is meant to be driven by the
// scheduler once a second.
type Ticker struct {
	mu      sync.RWMutex
	loc     *time.Location
	now     func() time.Time
	current Reading
}

func NewTicker(loc *time.Location) *Ticker {
	if loc == nil {
		loc = time.Local
	}
	t := &Ticker{loc: loc, now: time.Now}
	t.Tick(context.Background())
	return t
}

func (t *Ticker) Tick(ctx context.Context) error {
	r := Format(t.now().In(t.loc))

	t.mu.Lock()
	t.current = r
	t.mu.Unlock()
	return nil
}

func (t *Ticker) Current() Reading {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}
