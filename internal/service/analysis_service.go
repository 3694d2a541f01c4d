// Package service composes the store, the comparison engine, the scrapers
// and the alerting channels into the operations the server and the batch
// modes call.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/propscan/propscan/internal/compare"
	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/notify"
)

// Thresholds are the detector cutoffs. Zero values are replaced by defaults
// at construction.
type Thresholds struct {
	MinProfitPercent float64
	MinLineDiff      float64
	MinOddsDiff      int
}

// DefaultThresholds returns the detector cutoffs used when the config leaves
// them unset.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinProfitPercent: 0.5,
		MinLineDiff:      1.0,
		MinOddsDiff:      15,
	}
}

// defaultCacheTTL bounds staleness of cached detector results between
// refreshes.
const defaultCacheTTL = 5 * time.Minute

// BookCount is one book's record count inside a date summary.
type BookCount struct {
	Book  domain.Book `json:"sportsbook"`
	Count int         `json:"count"`
}

// DateSummary is the board overview returned by the today endpoint.
type DateSummary struct {
	GameDate        string      `json:"game_date"`
	TotalRecords    int         `json:"total_records"`
	Books           []BookCount `json:"books"`
	Arbitrage       int         `json:"arbitrage_count"`
	Discrepancies   int         `json:"discrepancy_count"`
	BestOddsEdges   int         `json:"best_odds_count"`
	DistinctPlayers int         `json:"distinct_players"`
}

// AnalysisService answers every read-side question: raw records, detector
// results, player history, and the per-date summary. Detector results are
// cached per (kind, date) when a cache is wired; the ingestion side
// invalidates affected dates on refresh.
type AnalysisService struct {
	store      domain.PropStore
	engine     *compare.Engine
	cache      domain.AnalysisCache
	cacheTTL   time.Duration
	thresholds Thresholds
	notifier   *notify.Notifier
	logger     *slog.Logger
}

// NewAnalysisService creates an AnalysisService with the given thresholds.
func NewAnalysisService(store domain.PropStore, engine *compare.Engine, thresholds Thresholds, logger *slog.Logger) *AnalysisService {
	def := DefaultThresholds()
	if thresholds.MinProfitPercent == 0 {
		thresholds.MinProfitPercent = def.MinProfitPercent
	}
	if thresholds.MinLineDiff == 0 {
		thresholds.MinLineDiff = def.MinLineDiff
	}
	if thresholds.MinOddsDiff == 0 {
		thresholds.MinOddsDiff = def.MinOddsDiff
	}
	return &AnalysisService{
		store:      store,
		engine:     engine,
		cacheTTL:   defaultCacheTTL,
		thresholds: thresholds,
		logger:     logger.With(slog.String("component", "analysis")),
	}
}

// WithCache enables detector result caching.
func (s *AnalysisService) WithCache(cache domain.AnalysisCache, ttl time.Duration) *AnalysisService {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// WithNotifier enables arbitrage alerting.
func (s *AnalysisService) WithNotifier(n *notify.Notifier) *AnalysisService {
	s.notifier = n
	return s
}

// PropsForDate returns the stored records for a date, optionally filtered to
// one book.
func (s *AnalysisService) PropsForDate(ctx context.Context, gameDate string, book domain.Book) ([]domain.PropRecord, error) {
	date, err := domain.ParseGameDate(gameDate)
	if err != nil {
		return nil, err
	}
	return s.store.ListDate(ctx, date, book)
}

// Arbitrage returns the guaranteed-profit opportunities for a date.
func (s *AnalysisService) Arbitrage(ctx context.Context, gameDate string) ([]domain.ArbitrageOpportunity, error) {
	date, err := domain.ParseGameDate(gameDate)
	if err != nil {
		return nil, err
	}

	var cached []domain.ArbitrageOpportunity
	if ok := s.cacheGet(ctx, domain.AnalysisArbitrage, date, &cached); ok {
		return cached, nil
	}

	records, err := s.store.ListDate(ctx, date, "")
	if err != nil {
		return nil, err
	}
	opps := s.engine.FindArbitrage(records, s.thresholds.MinProfitPercent)
	s.cacheSet(ctx, domain.AnalysisArbitrage, date, opps)

	if len(opps) > 0 && s.notifier != nil {
		title, message := notify.FormatArbitrage(date, opps)
		if err := s.notifier.Notify(ctx, notify.EventArbitrage, title, message); err != nil {
			s.logger.WarnContext(ctx, "arbitrage alert failed",
				slog.String("game_date", date),
				slog.String("error", err.Error()),
			)
		}
	}
	return opps, nil
}

// LineDiscrepancies returns the cross-book line gaps for a date.
func (s *AnalysisService) LineDiscrepancies(ctx context.Context, gameDate string) ([]domain.LineDiscrepancy, error) {
	date, err := domain.ParseGameDate(gameDate)
	if err != nil {
		return nil, err
	}

	var cached []domain.LineDiscrepancy
	if ok := s.cacheGet(ctx, domain.AnalysisDiscrepancies, date, &cached); ok {
		return cached, nil
	}

	records, err := s.store.ListDate(ctx, date, "")
	if err != nil {
		return nil, err
	}
	discs := s.engine.FindLineDiscrepancies(records, s.thresholds.MinLineDiff)
	s.cacheSet(ctx, domain.AnalysisDiscrepancies, date, discs)
	return discs, nil
}

// BestOdds returns the same-line price edges for a date.
func (s *AnalysisService) BestOdds(ctx context.Context, gameDate string) ([]domain.BestOddsEdge, error) {
	date, err := domain.ParseGameDate(gameDate)
	if err != nil {
		return nil, err
	}

	var cached []domain.BestOddsEdge
	if ok := s.cacheGet(ctx, domain.AnalysisBestOdds, date, &cached); ok {
		return cached, nil
	}

	records, err := s.store.ListDate(ctx, date, "")
	if err != nil {
		return nil, err
	}
	edges := s.engine.FindBestOdds(records, s.thresholds.MinOddsDiff)
	s.cacheSet(ctx, domain.AnalysisBestOdds, date, edges)
	return edges, nil
}

// PlayerHistory returns a player's stored lines for one market over a
// trailing window of days, newest first.
func (s *AnalysisService) PlayerHistory(ctx context.Context, player, propType string, days int) ([]domain.PropRecord, error) {
	if player == "" {
		return nil, fmt.Errorf("service: player is required")
	}
	return s.store.PlayerHistory(ctx, player, propType, days)
}

// Summary builds the board overview for one date: per-book record counts and
// the size of each detector's result set at the configured thresholds.
func (s *AnalysisService) Summary(ctx context.Context, gameDate string) (DateSummary, error) {
	date, err := domain.ParseGameDate(gameDate)
	if err != nil {
		return DateSummary{}, err
	}

	records, err := s.store.ListDate(ctx, date, "")
	if err != nil {
		return DateSummary{}, err
	}

	summary := DateSummary{GameDate: date, TotalRecords: len(records)}

	bookIdx := make(map[domain.Book]int)
	players := make(map[string]struct{})
	for _, r := range records {
		i, ok := bookIdx[r.Book]
		if !ok {
			i = len(summary.Books)
			bookIdx[r.Book] = i
			summary.Books = append(summary.Books, BookCount{Book: r.Book})
		}
		summary.Books[i].Count++
		players[r.Player] = struct{}{}
	}
	summary.DistinctPlayers = len(players)

	summary.Arbitrage = len(s.engine.FindArbitrage(records, s.thresholds.MinProfitPercent))
	summary.Discrepancies = len(s.engine.FindLineDiscrepancies(records, s.thresholds.MinLineDiff))
	summary.BestOddsEdges = len(s.engine.FindBestOdds(records, s.thresholds.MinOddsDiff))
	return summary, nil
}

// cacheGet loads and decodes a cached detector payload. Any cache failure is
// treated as a miss.
func (s *AnalysisService) cacheGet(ctx context.Context, kind, date string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, kind, date)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.WarnContext(ctx, "corrupt cache entry",
			slog.String("kind", kind),
			slog.String("game_date", date),
		)
		return false
	}
	return true
}

// cacheSet stores a detector payload; failures are logged, never surfaced.
func (s *AnalysisService) cacheSet(ctx context.Context, kind, date string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, kind, date, data, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("kind", kind),
			slog.String("game_date", date),
			slog.String("error", err.Error()),
		)
	}
}
