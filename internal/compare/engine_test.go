package compare

import (
	"io"
	"log/slog"
	"testing"

	"github.com/propscan/propscan/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func intp(v int) *int { return &v }

func record(player, propType string, line float64, over, under *int, book domain.Book) domain.PropRecord {
	return domain.PropRecord{
		Player:    player,
		Team:      "LAL",
		PropType:  propType,
		Line:      line,
		OverOdds:  over,
		UnderOdds: under,
		Book:      book,
		GameDate:  "2025-10-24",
		Game:      "LAL @ BOS",
	}
}

func TestFindArbitrage(t *testing.T) {
	// +120 on both sides across two books guarantees ~10% whichever way the
	// pairing is ordered, so both orderings must be reported independently.
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, intp(120), intp(-140), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(-135), intp(120), domain.BookFanDuel),
	}

	opps := testEngine().FindArbitrage(records, 0.5)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.OverBook != domain.BookDraftKings || opp.UnderBook != domain.BookFanDuel {
		t.Errorf("wrong pairing: over=%s under=%s", opp.OverBook, opp.UnderBook)
	}
	if opp.OverOdds != 120 || opp.UnderOdds != 120 {
		t.Errorf("wrong odds: over=%d under=%d", opp.OverOdds, opp.UnderOdds)
	}
	if opp.ProfitPercent < 9.9 || opp.ProfitPercent > 10.1 {
		t.Errorf("profit = %f, want about 10.0", opp.ProfitPercent)
	}
}

func TestFindArbitrageBothOrderings(t *testing.T) {
	// Both (DK over, FD under) and (FD over, DK under) clear the threshold.
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, intp(110), intp(105), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(105), intp(110), domain.BookFanDuel),
	}

	opps := testEngine().FindArbitrage(records, 0.1)
	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2", len(opps))
	}
	if opps[0].OverBook == opps[1].OverBook {
		t.Errorf("expected two distinct orderings, both have over on %s", opps[0].OverBook)
	}
}

func TestFindArbitrageRespectsThresholdAndVig(t *testing.T) {
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, intp(-110), intp(-110), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(-110), intp(-110), domain.BookFanDuel),
	}
	if opps := testEngine().FindArbitrage(records, 0.1); len(opps) != 0 {
		t.Fatalf("vigged market produced %d opportunities, want 0", len(opps))
	}
}

func TestFindArbitrageSkipsAbsentSides(t *testing.T) {
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, intp(120), nil, domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(125), nil, domain.BookFanDuel),
	}
	if opps := testEngine().FindArbitrage(records, 0); len(opps) != 0 {
		t.Fatalf("over-only quotes produced %d opportunities, want 0", len(opps))
	}
}

func TestFindArbitrageSortedByProfitDescending(t *testing.T) {
	records := []domain.PropRecord{
		record("anthony davis", "rebounds", 11.5, intp(105), intp(-200), domain.BookDraftKings),
		record("anthony davis", "rebounds", 11.5, intp(-200), intp(105), domain.BookFanDuel),
		record("lebron james", "points", 24.5, intp(130), intp(-200), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(-200), intp(130), domain.BookFanDuel),
	}

	opps := testEngine().FindArbitrage(records, 0.1)
	if len(opps) < 2 {
		t.Fatalf("got %d opportunities, want at least 2", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i].ProfitPercent > opps[i-1].ProfitPercent {
			t.Errorf("result %d (%f%%) sorted above %d (%f%%)",
				i-1, opps[i-1].ProfitPercent, i, opps[i].ProfitPercent)
		}
	}
	if opps[0].Player != "lebron james" {
		t.Errorf("highest profit should be the +130 pairing, got %s", opps[0].Player)
	}
}

func TestFindLineDiscrepancies(t *testing.T) {
	records := []domain.PropRecord{
		record("anthony davis", "rebounds", 10.5, intp(-110), intp(-110), domain.BookDraftKings),
		record("anthony davis", "rebounds", 12.5, intp(-115), intp(-105), domain.BookFanDuel),
		record("lebron james", "points", 24.5, intp(-110), intp(-110), domain.BookDraftKings),
		record("lebron james", "points", 25.0, intp(-110), intp(-110), domain.BookFanDuel),
	}

	discs := testEngine().FindLineDiscrepancies(records, 1.0)
	if len(discs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(discs))
	}

	d := discs[0]
	if d.Player != "anthony davis" {
		t.Errorf("player = %s, want anthony davis", d.Player)
	}
	if d.LineDifference != 2.0 {
		t.Errorf("line difference = %f, want 2.0", d.LineDifference)
	}
	if d.Books[0].Book != domain.BookDraftKings || d.Books[1].Book != domain.BookFanDuel {
		t.Errorf("books = %s/%s, want draftkings/fanduel", d.Books[0].Book, d.Books[1].Book)
	}
}

func TestFindLineDiscrepanciesIgnoresSameBook(t *testing.T) {
	// Alternate lines inside one book are not a cross-book discrepancy.
	records := []domain.PropRecord{
		record("lebron james", "points", 22.5, intp(-150), intp(120), domain.BookDraftKings),
		record("lebron james", "points", 26.5, intp(130), intp(-160), domain.BookDraftKings),
	}
	if discs := testEngine().FindLineDiscrepancies(records, 0.5); len(discs) != 0 {
		t.Fatalf("same-book lines produced %d discrepancies, want 0", len(discs))
	}
}

func TestFindBestOddsSymmetry(t *testing.T) {
	a := record("lebron james", "points", 24.5, intp(150), nil, domain.BookDraftKings)
	b := record("lebron james", "points", 24.5, intp(120), nil, domain.BookFanDuel)

	forward := testEngine().FindBestOdds([]domain.PropRecord{a, b}, 10)
	reverse := testEngine().FindBestOdds([]domain.PropRecord{b, a}, 10)

	if len(forward) != 1 || len(reverse) != 1 {
		t.Fatalf("got %d/%d edges, want 1/1", len(forward), len(reverse))
	}
	if forward[0].OddsDifference != reverse[0].OddsDifference {
		t.Errorf("difference depends on order: %d vs %d",
			forward[0].OddsDifference, reverse[0].OddsDifference)
	}
	if forward[0].BestBook != reverse[0].BestBook {
		t.Errorf("best book depends on order: %s vs %s",
			forward[0].BestBook, reverse[0].BestBook)
	}
	if forward[0].BestBook != domain.BookDraftKings {
		t.Errorf("best book = %s, want draftkings (+150 beats +120)", forward[0].BestBook)
	}
}

func TestFindBestOddsComparesSignedValues(t *testing.T) {
	// -105 is a better price than -130 even though |-130| > |-105|.
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, nil, intp(-130), domain.BookDraftKings),
		record("lebron james", "points", 24.5, nil, intp(-105), domain.BookFanDuel),
	}

	edges := testEngine().FindBestOdds(records, 10)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	e := edges[0]
	if e.Side != domain.SideUnder {
		t.Errorf("side = %s, want under", e.Side)
	}
	if e.BestBook != domain.BookFanDuel || e.BestOdds != -105 {
		t.Errorf("best = %s %d, want fanduel -105", e.BestBook, e.BestOdds)
	}
	if e.OddsDifference != 25 {
		t.Errorf("difference = %d, want 25", e.OddsDifference)
	}
}

// The worked example from the comparison design: one player, one market,
// equal lines, diverging prices.
func TestEndToEndScenario(t *testing.T) {
	records := []domain.PropRecord{
		record("lebron james", "points", 24.5, intp(-115), intp(-105), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(120), intp(-150), domain.BookFanDuel),
	}
	engine := testEngine()

	edges := engine.FindBestOdds(records, 5)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}

	// Over: DK -115 vs FD +120, difference 235, FD better. Sorted first.
	over := edges[0]
	if over.Side != domain.SideOver || over.OddsDifference != 235 {
		t.Errorf("first edge = %s diff %d, want over diff 235", over.Side, over.OddsDifference)
	}
	if over.BestBook != domain.BookFanDuel || over.BestOdds != 120 || over.OtherOdds != -115 {
		t.Errorf("over edge best = %s %d other %d, want fanduel 120 other -115",
			over.BestBook, over.BestOdds, over.OtherOdds)
	}

	// Under: DK -105 vs FD -150, difference 45, DK better.
	under := edges[1]
	if under.Side != domain.SideUnder || under.OddsDifference != 45 {
		t.Errorf("second edge = %s diff %d, want under diff 45", under.Side, under.OddsDifference)
	}
	if under.BestBook != domain.BookDraftKings || under.BestOdds != -105 {
		t.Errorf("under edge best = %s %d, want draftkings -105", under.BestBook, under.BestOdds)
	}

	// DK-over(-115)/FD-under(-150): implied probabilities sum over 1.
	if opps := engine.FindArbitrage(records, 0.1); len(opps) != 0 {
		t.Errorf("got %d arbitrage opportunities, want 0", len(opps))
	}

	// Lines are equal, so no discrepancy.
	if discs := engine.FindLineDiscrepancies(records, 0.5); len(discs) != 0 {
		t.Errorf("got %d line discrepancies, want 0", len(discs))
	}
}

// Detectors must be deterministic: equal-profit results keep the store's
// (player, prop_type, sportsbook, line) encounter order.
func TestTieBreakKeepsEncounterOrder(t *testing.T) {
	records := []domain.PropRecord{
		record("anthony davis", "rebounds", 11.5, intp(120), intp(120), domain.BookDraftKings),
		record("anthony davis", "rebounds", 11.5, intp(120), intp(120), domain.BookFanDuel),
		record("lebron james", "points", 24.5, intp(120), intp(120), domain.BookDraftKings),
		record("lebron james", "points", 24.5, intp(120), intp(120), domain.BookFanDuel),
	}

	opps := testEngine().FindArbitrage(records, 0.1)
	if len(opps) != 4 {
		t.Fatalf("got %d opportunities, want 4", len(opps))
	}
	// All profits tie at ~10%, so davis (encountered first) stays first.
	if opps[0].Player != "anthony davis" || opps[3].Player != "lebron james" {
		t.Errorf("tie-break order violated: first=%s last=%s", opps[0].Player, opps[3].Player)
	}
}
