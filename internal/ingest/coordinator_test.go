package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/propscan/propscan/internal/domain"
)

// fakeStore implements domain.PropStore with the same replace semantics as
// the real store: each ReplaceDate call swaps the full record set for one
// (book, game_date) pair.
type fakeStore struct {
	data     map[string][]domain.PropRecord // key: book|date
	replaces []string
	failOn   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]domain.PropRecord)}
}

func storeKey(book domain.Book, date string) string {
	return string(book) + "|" + date
}

func (s *fakeStore) ReplaceDate(_ context.Context, book domain.Book, date string, records []domain.PropRecord) (int, int, error) {
	key := storeKey(book, date)
	if s.failOn == key {
		return 0, 0, errors.New("boom")
	}
	deleted := len(s.data[key])
	s.data[key] = append([]domain.PropRecord(nil), records...)
	s.replaces = append(s.replaces, key)
	return deleted, len(records), nil
}

func (s *fakeStore) ListDate(_ context.Context, date string, book domain.Book) ([]domain.PropRecord, error) {
	var out []domain.PropRecord
	for key, records := range s.data {
		for _, r := range records {
			if r.GameDate == date && (book == "" || r.Book == book) {
				out = append(out, r)
			}
		}
		_ = key
	}
	return out, nil
}

func (s *fakeStore) PlayerHistory(context.Context, string, string, int) ([]domain.PropRecord, error) {
	return nil, nil
}

func (s *fakeStore) CountDate(_ context.Context, date string, book domain.Book) (int64, error) {
	records, _ := s.ListDate(context.Background(), date, book)
	return int64(len(records)), nil
}

func testCoordinator(store domain.PropStore) *Coordinator {
	return NewCoordinator(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func candidate(player string, line float64, over, under, date string) domain.CandidateRecord {
	return domain.CandidateRecord{
		Player:    player,
		Team:      "LAL",
		PropType:  "Points",
		Line:      line,
		OverOdds:  over,
		UnderOdds: under,
		GameDate:  date,
		Game:      "LAL @ BOS",
	}
}

func TestRefreshEmptyBatchIsNoOp(t *testing.T) {
	store := newFakeStore()
	res, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 0 || res.Deleted != 0 || res.Dropped != 0 {
		t.Errorf("result = %+v, want all zero counts", res)
	}
	if len(store.replaces) != 0 {
		t.Errorf("store touched %d times for an empty batch", len(store.replaces))
	}
}

func TestRefreshNormalizesAndStores(t *testing.T) {
	store := newFakeStore()
	batch := []domain.CandidateRecord{
		// Unicode minus on the over side, suffix and punctuation in the name.
		candidate("LeBron James Jr.", 24.5, "−115", "-105", "2025-10-24"),
	}

	res, err := testCoordinator(store).Refresh(context.Background(), domain.Book("DraftKings"), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", res.Inserted)
	}

	records := store.data[storeKey(domain.BookDraftKings, "2025-10-24")]
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}
	r := records[0]
	if r.Player != "lebron james" {
		t.Errorf("player = %q, want %q", r.Player, "lebron james")
	}
	if r.PropType != "points" {
		t.Errorf("prop_type = %q, want %q", r.PropType, "points")
	}
	if r.OverOdds == nil || *r.OverOdds != -115 {
		t.Errorf("over odds = %v, want -115", r.OverOdds)
	}
	if r.Book != domain.BookDraftKings {
		t.Errorf("book = %q, want normalized %q", r.Book, domain.BookDraftKings)
	}
	if r.ScrapedAt.IsZero() {
		t.Error("scrape timestamp not set")
	}
}

func TestRefreshUnparseableOddsBecomeAbsent(t *testing.T) {
	store := newFakeStore()
	batch := []domain.CandidateRecord{
		candidate("lebron james", 24.5, "EVEN", "-105", "2025-10-24"),
	}

	res, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1 (record kept with absent side)", res.Inserted)
	}

	r := store.data[storeKey(domain.BookDraftKings, "2025-10-24")][0]
	if r.OverOdds != nil {
		t.Errorf("over odds = %d, want absent", *r.OverOdds)
	}
	if r.UnderOdds == nil || *r.UnderOdds != -105 {
		t.Errorf("under odds = %v, want -105", r.UnderOdds)
	}
}

func TestRefreshDropsHopelessCandidates(t *testing.T) {
	store := newFakeStore()
	batch := []domain.CandidateRecord{
		candidate("lebron james", 24.5, "bad", "0", "2025-10-24"), // no quoted side survives
		candidate("", 24.5, "-110", "-110", "2025-10-24"),         // no player
		candidate("anthony davis", 24.5, "-110", "-110", "24/10/2025"), // bad date
		candidate("austin reaves", 0, "-110", "-110", "2025-10-24"),    // bad line
		candidate("rui hachimura", 14.5, "-110", "-110", "2025-10-24"), // valid
	}

	res, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Dropped != 4 {
		t.Errorf("dropped = %d, want 4", res.Dropped)
	}
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", res.Inserted)
	}
}

func TestRefreshCollisionLastOneWins(t *testing.T) {
	store := newFakeStore()
	batch := []domain.CandidateRecord{
		candidate("lebron james", 24.5, "-115", "-105", "2025-10-24"),
		candidate("lebron james", 24.5, "-120", "+100", "2025-10-24"),
	}

	res, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", res.Inserted)
	}

	r := store.data[storeKey(domain.BookDraftKings, "2025-10-24")][0]
	if r.OverOdds == nil || *r.OverOdds != -120 {
		t.Errorf("over odds = %v, want -120 from the later duplicate", r.OverOdds)
	}
}

func TestRefreshGroupsByDate(t *testing.T) {
	store := newFakeStore()
	batch := []domain.CandidateRecord{
		candidate("lebron james", 24.5, "-110", "-110", "2025-10-25"),
		candidate("anthony davis", 11.5, "-110", "-110", "2025-10-24"),
		candidate("austin reaves", 15.5, "-110", "-110", "2025-10-25"),
	}

	res, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Dates) != 2 || res.Dates[0] != "2025-10-24" || res.Dates[1] != "2025-10-25" {
		t.Errorf("dates = %v, want [2025-10-24 2025-10-25]", res.Dates)
	}
	if n := len(store.data[storeKey(domain.BookDraftKings, "2025-10-25")]); n != 2 {
		t.Errorf("stored %d records for 2025-10-25, want 2", n)
	}
}

func TestRefreshIdempotence(t *testing.T) {
	store := newFakeStore()
	coord := testCoordinator(store)
	batch := []domain.CandidateRecord{
		candidate("lebron james", 24.5, "-115", "-105", "2025-10-24"),
		candidate("anthony davis", 11.5, "-110", "-110", "2025-10-24"),
	}

	if _, err := coord.Refresh(context.Background(), domain.BookDraftKings, batch); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	res, err := coord.Refresh(context.Background(), domain.BookDraftKings, batch)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if res.Deleted != 2 || res.Inserted != 2 {
		t.Errorf("second refresh deleted=%d inserted=%d, want 2/2", res.Deleted, res.Inserted)
	}
	if n := len(store.data[storeKey(domain.BookDraftKings, "2025-10-24")]); n != 2 {
		t.Errorf("row count after identical refresh = %d, want 2", n)
	}
}

func TestRefreshIsolation(t *testing.T) {
	store := newFakeStore()
	coord := testCoordinator(store)
	ctx := context.Background()

	if _, err := coord.Refresh(ctx, domain.BookFanDuel, []domain.CandidateRecord{
		candidate("lebron james", 25.5, "+120", "-150", "2025-10-24"),
	}); err != nil {
		t.Fatalf("fanduel refresh: %v", err)
	}
	if _, err := coord.Refresh(ctx, domain.BookDraftKings, []domain.CandidateRecord{
		candidate("lebron james", 24.5, "-115", "-105", "2025-10-24"),
		candidate("lebron james", 26.5, "-110", "-110", "2025-10-25"),
	}); err != nil {
		t.Fatalf("draftkings refresh: %v", err)
	}

	// A later DK refresh for one date must not touch FD rows or other DK dates.
	if _, err := coord.Refresh(ctx, domain.BookDraftKings, []domain.CandidateRecord{
		candidate("austin reaves", 15.5, "-110", "-110", "2025-10-24"),
	}); err != nil {
		t.Fatalf("second draftkings refresh: %v", err)
	}

	if n := len(store.data[storeKey(domain.BookFanDuel, "2025-10-24")]); n != 1 {
		t.Errorf("fanduel rows = %d, want 1 (untouched)", n)
	}
	if n := len(store.data[storeKey(domain.BookDraftKings, "2025-10-25")]); n != 1 {
		t.Errorf("draftkings 2025-10-25 rows = %d, want 1 (untouched)", n)
	}
	records := store.data[storeKey(domain.BookDraftKings, "2025-10-24")]
	if len(records) != 1 || records[0].Player != "austin reaves" {
		t.Errorf("draftkings 2025-10-24 = %+v, want only the new record", records)
	}
}

func TestRefreshStoreFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.failOn = storeKey(domain.BookDraftKings, "2025-10-24")

	_, err := testCoordinator(store).Refresh(context.Background(), domain.BookDraftKings, []domain.CandidateRecord{
		candidate("lebron james", 24.5, "-115", "-105", "2025-10-24"),
	})
	if err == nil {
		t.Fatal("expected error from failing store, got nil")
	}
}
