package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/propscan/propscan/internal/books"
	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/ingest"
)

// RefreshService drives the scrape-and-replace cycle: each registered book's
// board is fetched and handed to the ingestion coordinator. Books run
// concurrently; the coordinator serializes per book internally.
type RefreshService struct {
	registry    *books.Registry
	coordinator *ingest.Coordinator
	cache       domain.AnalysisCache
	logger      *slog.Logger
}

// NewRefreshService creates a RefreshService over the given scrapers.
func NewRefreshService(registry *books.Registry, coordinator *ingest.Coordinator, logger *slog.Logger) *RefreshService {
	return &RefreshService{
		registry:    registry,
		coordinator: coordinator,
		logger:      logger.With(slog.String("component", "refresh")),
	}
}

// WithCache enables analysis cache invalidation for refreshed dates.
func (s *RefreshService) WithCache(cache domain.AnalysisCache) *RefreshService {
	s.cache = cache
	return s
}

// RefreshBook scrapes one sportsbook and replaces its stored board.
func (s *RefreshService) RefreshBook(ctx context.Context, book domain.Book) (domain.RefreshResult, error) {
	scraper, err := s.registry.Get(book)
	if err != nil {
		return domain.RefreshResult{}, err
	}
	return s.refresh(ctx, scraper)
}

// RefreshAll scrapes every registered sportsbook concurrently. It returns
// the per-book results for books that succeeded; the error joins the books
// that failed. One book failing does not stop the others.
func (s *RefreshService) RefreshAll(ctx context.Context) ([]domain.RefreshResult, error) {
	scrapers := s.registry.All()
	if len(scrapers) == 0 {
		return nil, fmt.Errorf("service: no sportsbooks registered")
	}

	var (
		mu      sync.Mutex
		results []domain.RefreshResult
		failed  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, scraper := range scrapers {
		g.Go(func() error {
			res, err := s.refresh(gctx, scraper)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.ErrorContext(gctx, "book refresh failed",
					slog.String("book", scraper.Book().String()),
					slog.String("error", err.Error()),
				)
				failed = append(failed, scraper.Book().String())
				// Keep the other books running.
				return nil
			}
			results = append(results, res)
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return results, fmt.Errorf("service: refresh failed for %d book(s): %v", len(failed), failed)
	}
	return results, nil
}

func (s *RefreshService) refresh(ctx context.Context, scraper books.Scraper) (domain.RefreshResult, error) {
	book := scraper.Book()

	candidates, err := scraper.Scrape(ctx)
	if err != nil {
		return domain.RefreshResult{}, fmt.Errorf("service: scrape %s: %w", book, err)
	}

	result, err := s.coordinator.Refresh(ctx, book, candidates)
	if err != nil {
		return result, err
	}

	if s.cache != nil {
		for _, date := range result.Dates {
			if err := s.cache.InvalidateDate(ctx, date); err != nil {
				s.logger.WarnContext(ctx, "cache invalidation failed",
					slog.String("game_date", date),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return result, nil
}
