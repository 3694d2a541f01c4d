package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/propscan/propscan/internal/compare"
	"github.com/propscan/propscan/internal/domain"
)

type stubStore struct {
	records   []domain.PropRecord
	listCalls int
}

func (s *stubStore) ReplaceDate(context.Context, domain.Book, string, []domain.PropRecord) (int, int, error) {
	return 0, 0, errors.New("not implemented")
}

func (s *stubStore) ListDate(_ context.Context, date string, book domain.Book) ([]domain.PropRecord, error) {
	s.listCalls++
	var out []domain.PropRecord
	for _, r := range s.records {
		if r.GameDate == date && (book == "" || r.Book == book) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) PlayerHistory(_ context.Context, player, propType string, _ int) ([]domain.PropRecord, error) {
	var out []domain.PropRecord
	for _, r := range s.records {
		if r.Player == player && r.PropType == propType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) CountDate(context.Context, string, domain.Book) (int64, error) {
	return int64(len(s.records)), nil
}

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, kind, date string) ([]byte, error) {
	v, ok := c.data[kind+":"+date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, kind, date string, data []byte, _ time.Duration) error {
	c.data[kind+":"+date] = data
	return nil
}

func (c *memCache) InvalidateDate(_ context.Context, date string) error {
	for _, kind := range []string{domain.AnalysisArbitrage, domain.AnalysisDiscrepancies, domain.AnalysisBestOdds} {
		delete(c.data, kind+":"+date)
	}
	return nil
}

func intp(v int) *int { return &v }

func boardFixture() []domain.PropRecord {
	return []domain.PropRecord{
		{Player: "anthony davis", PropType: "rebounds", Line: 11.5, OverOdds: intp(120), UnderOdds: intp(-140), Book: domain.BookDraftKings, GameDate: "2025-10-24"},
		{Player: "anthony davis", PropType: "rebounds", Line: 11.5, OverOdds: intp(-135), UnderOdds: intp(120), Book: domain.BookFanDuel, GameDate: "2025-10-24"},
		{Player: "lebron james", PropType: "points", Line: 24.5, OverOdds: intp(-115), UnderOdds: intp(-105), Book: domain.BookDraftKings, GameDate: "2025-10-24"},
		{Player: "lebron james", PropType: "points", Line: 26.5, OverOdds: intp(120), UnderOdds: intp(-150), Book: domain.BookFanDuel, GameDate: "2025-10-24"},
	}
}

func testService(store *stubStore) *AnalysisService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAnalysisService(store, compare.NewEngine(logger), Thresholds{}, logger)
}

func TestArbitrageRejectsInvalidDate(t *testing.T) {
	svc := testService(&stubStore{})
	if _, err := svc.Arbitrage(context.Background(), "10/24/2025"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestArbitrageFindsCrossBookPair(t *testing.T) {
	store := &stubStore{records: boardFixture()}
	opps, err := testService(store).Arbitrage(context.Background(), "2025-10-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Player != "anthony davis" {
		t.Errorf("player = %s, want anthony davis", opps[0].Player)
	}
}

func TestArbitrageUsesCache(t *testing.T) {
	store := &stubStore{records: boardFixture()}
	svc := testService(store).WithCache(newMemCache(), time.Minute)
	ctx := context.Background()

	first, err := svc.Arbitrage(ctx, "2025-10-24")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	callsAfterFirst := store.listCalls

	second, err := svc.Arbitrage(ctx, "2025-10-24")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.listCalls != callsAfterFirst {
		t.Errorf("second call hit the store (%d -> %d calls), want cache hit", callsAfterFirst, store.listCalls)
	}
	if len(first) != len(second) {
		t.Errorf("cached result differs: %d vs %d", len(first), len(second))
	}
}

func TestSummaryCounts(t *testing.T) {
	store := &stubStore{records: boardFixture()}
	summary, err := testService(store).Summary(context.Background(), "2025-10-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalRecords != 4 {
		t.Errorf("total = %d, want 4", summary.TotalRecords)
	}
	if summary.DistinctPlayers != 2 {
		t.Errorf("players = %d, want 2", summary.DistinctPlayers)
	}
	if len(summary.Books) != 2 {
		t.Fatalf("books = %d, want 2", len(summary.Books))
	}
	if summary.Arbitrage != 1 {
		t.Errorf("arbitrage count = %d, want 1", summary.Arbitrage)
	}
	// The lebron lines differ by 2.0, above the 1.0 default threshold.
	if summary.Discrepancies != 1 {
		t.Errorf("discrepancy count = %d, want 1", summary.Discrepancies)
	}
}

func TestPlayerHistoryRequiresPlayer(t *testing.T) {
	if _, err := testService(&stubStore{}).PlayerHistory(context.Background(), "", "points", 30); err == nil {
		t.Fatal("expected error for empty player")
	}
}
