// Package quotes provides the mirror's quote of the day.
package quotes

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
)

const unknownAuthor = "Unknown"

//go:embed quotes.csv
var defaultQuotes []byte

var ErrNoQuotes = errors.New("no quotes loaded")

type Quote struct {
	Author string `json:"author"`
	Text   string `json:"quote"`
}

// Parse reads one "author;quote" pair per line. The quote may itself contain
// semicolons; an empty author becomes "Unknown". Blank lines are skipped.
func Parse(r io.Reader) ([]Quote, error) {
	var quotes []Quote

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		author, quote, ok := strings.Cut(text, ";")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ';' separator", line)
		}
		author = strings.TrimSpace(author)
		if author == "" {
			author = unknownAuthor
		}
		quotes = append(quotes, Quote{Author: author, Text: strings.TrimSpace(quote)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return quotes, nil
}

// Load parses the quotes file at path, or the built-in list when path is empty.
func Load(path string) ([]Quote, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultQuotes))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open quotes file %s: %w", path, err)
	}
	defer f.Close()

	quotes, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quotes file %s: %w", path, err)
	}
	return quotes, nil
}

// Rotator picks a random quote of the day each time Rotate runs.
type Rotator struct {
	mu      sync.RWMutex
	quotes  []Quote
	current *Quote
	pick    func(n int) int
}

func NewRotator(quotes []Quote) *Rotator {
	return &Rotator{quotes: quotes, pick: rand.IntN}
}

func (r *Rotator) Rotate(ctx context.Context) error {
	if len(r.quotes) == 0 {
		return ErrNoQuotes
	}

	q := r.quotes[r.pick(len(r.quotes))]

	r.mu.Lock()
	r.current = &q
	r.mu.Unlock()
	return nil
}

// Current returns the quote of the day; false before the first rotation.
func (r *Rotator) Current() (Quote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return Quote{}, false
	}
	return *r.current, true
}
