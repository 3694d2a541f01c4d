// Package books defines the sportsbook scraper interface and the registry
// the ingestion modes iterate over. Each sportsbook client lives in its own
// sub-package and registers itself at wire time.
package books

import (
	"context"
	"fmt"
	"sync"

	"github.com/propscan/propscan/internal/domain"
)

// Scraper fetches the current player prop board from one sportsbook and
// returns it as raw candidate records. Normalization and validation happen
// downstream in the ingestion coordinator.
type Scraper interface {
	// Book returns the canonical identifier of the sportsbook.
	Book() domain.Book

	// Scrape fetches every player prop currently quoted for upcoming games.
	Scrape(ctx context.Context) ([]domain.CandidateRecord, error)
}

// Registry holds the configured scrapers in registration order.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[domain.Book]Scraper
	order    []domain.Book
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[domain.Book]Scraper)}
}

// Register adds a scraper. Registering the same book twice is a wiring bug.
func (r *Registry) Register(s Scraper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book := s.Book()
	if _, ok := r.scrapers[book]; ok {
		return fmt.Errorf("books: scraper for %s already registered", book)
	}
	r.scrapers[book] = s
	r.order = append(r.order, book)
	return nil
}

// Get returns the scraper for a book, or ErrNotFound.
func (r *Registry) Get(book domain.Book) (Scraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scrapers[book]
	if !ok {
		return nil, fmt.Errorf("books: %w: %s", domain.ErrNotFound, book)
	}
	return s, nil
}

// All returns the registered scrapers in registration order.
func (r *Registry) All() []Scraper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Scraper, 0, len(r.order))
	for _, book := range r.order {
		out = append(out, r.scrapers[book])
	}
	return out
}
