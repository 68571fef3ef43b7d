package market

import (
	"errors"
	"sync"
	"time"
)

var ErrNoQuote = errors.New("quote not found")

// Quote is the latest observed price for a symbol. High and Low are the
// day's extremes when the feed supplies them; zero means unknown.
type Quote struct {
	Symbol string
	Price  float64
	High   float64
	Low    float64
	Time   time.Time
}

// Snapshot is the immutable per-cycle view handed to the swarm manager.
// Exit evaluation only reads it; missing symbols simply have no entry.
type Snapshot map[string]Quote

func (s Snapshot) Get(symbol string) (Quote, bool) {
	q, ok := s[symbol]
	return q, ok
}

// Book is a concurrency-safe quote store fed by an external price source.
type Book struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewBook() *Book {
	return &Book{quotes: make(map[string]Quote)}
}

func (b *Book) Set(q Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[q.Symbol] = q
}

func (b *Book) Get(symbol string) (Quote, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	if !ok {
		return Quote{}, ErrNoQuote
	}
	return q, nil
}

// Snapshot copies the current book so a cycle can run against a fixed view
// while the feed keeps writing.
func (b *Book) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(Snapshot, len(b.quotes))
	for k, v := range b.quotes {
		out[k] = v
	}
	return out
}
