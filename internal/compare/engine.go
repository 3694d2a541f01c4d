// Package compare implements the three cross-book detectors: guaranteed
// arbitrage, line discrepancies, and same-line best odds. Every detector is a
// pure function of the record set it is handed: no I/O, no formatting, and a
// deterministic result order.
//
// Callers are expected to pass records in store order
// (player, prop_type, sportsbook, line). Grouping preserves that order, and
// each detector's stable descending sort breaks ties by it.
package compare

import (
	"log/slog"
	"math"
	"sort"

	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/oddsmath"
)

// Engine runs the detectors. It generalizes over every pair of distinct
// books present in the record set; no book name is special-cased anywhere.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a comparison engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With(slog.String("component", "compare"))}
}

// lineGroup collects the records quoting the same (player, prop_type, line)
// across books, in encounter order.
type lineGroup struct {
	records []domain.PropRecord
}

type lineKey struct {
	player   string
	propType string
	line     float64
}

// groupByLine partitions records by (player, prop_type, line), preserving the
// input order both across groups and inside each group.
func groupByLine(records []domain.PropRecord) []lineGroup {
	index := make(map[lineKey]int)
	var groups []lineGroup

	for _, r := range records {
		k := lineKey{player: r.Player, propType: r.PropType, line: r.Line}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, lineGroup{})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

type marketKey struct {
	player   string
	propType string
}

// groupByMarket partitions records by (player, prop_type) regardless of line,
// preserving input order.
func groupByMarket(records []domain.PropRecord) []lineGroup {
	index := make(map[marketKey]int)
	var groups []lineGroup

	for _, r := range records {
		k := marketKey{player: r.Player, propType: r.PropType}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, lineGroup{})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

// distinctBooks reports whether a group spans more than one sportsbook.
func distinctBooks(records []domain.PropRecord) bool {
	if len(records) < 2 {
		return false
	}
	first := records[0].Book
	for _, r := range records[1:] {
		if r.Book != first {
			return true
		}
	}
	return false
}

// FindArbitrage returns every (over, under) pairing across distinct books at
// the same line whose guaranteed profit meets minProfitPercent (inclusive),
// sorted by profit descending. Both orderings of a book pair are evaluated:
// X-over/Y-under and Y-over/X-under are different bets with different odds.
func (e *Engine) FindArbitrage(records []domain.PropRecord, minProfitPercent float64) []domain.ArbitrageOpportunity {
	var opps []domain.ArbitrageOpportunity

	for _, g := range groupByLine(records) {
		if !distinctBooks(g.records) {
			continue
		}
		for _, over := range g.records {
			if over.OverOdds == nil {
				continue
			}
			for _, under := range g.records {
				if under.Book == over.Book || under.UnderOdds == nil {
					continue
				}
				profit, ok := oddsmath.ArbitrageProfit(*over.OverOdds, *under.UnderOdds)
				if !ok || profit < minProfitPercent {
					continue
				}
				opps = append(opps, domain.ArbitrageOpportunity{
					Player:        over.Player,
					PropType:      over.PropType,
					Line:          over.Line,
					Game:          over.Game,
					Team:          over.Team,
					OverBook:      over.Book,
					OverOdds:      *over.OverOdds,
					UnderBook:     under.Book,
					UnderOdds:     *under.UnderOdds,
					ProfitPercent: profit,
				})
			}
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercent > opps[j].ProfitPercent
	})

	if len(opps) > 0 {
		e.logger.Debug("arbitrage detection complete",
			slog.Int("opportunities", len(opps)),
			slog.Float64("min_profit_percent", minProfitPercent),
		)
	}
	return opps
}

// FindLineDiscrepancies returns every pair of records from distinct books
// quoting the same player/market at lines that differ by at least
// minLineDiff, sorted by the absolute difference descending.
func (e *Engine) FindLineDiscrepancies(records []domain.PropRecord, minLineDiff float64) []domain.LineDiscrepancy {
	var discs []domain.LineDiscrepancy

	for _, g := range groupByMarket(records) {
		for i, a := range g.records {
			for _, b := range g.records[i+1:] {
				if a.Book == b.Book {
					continue
				}
				diff := math.Abs(a.Line - b.Line)
				if diff < minLineDiff {
					continue
				}
				discs = append(discs, domain.LineDiscrepancy{
					Player:   a.Player,
					PropType: a.PropType,
					Game:     a.Game,
					Team:     a.Team,
					Books: [2]domain.BookQuote{
						{Book: a.Book, Line: a.Line, OverOdds: a.OverOdds, UnderOdds: a.UnderOdds},
						{Book: b.Book, Line: b.Line, OverOdds: b.OverOdds, UnderOdds: b.UnderOdds},
					},
					LineDifference: diff,
				})
			}
		}
	}

	sort.SliceStable(discs, func(i, j int) bool {
		return discs[i].LineDifference > discs[j].LineDifference
	})
	return discs
}

// FindBestOdds compares same-side odds for the same line across books and
// returns the edges whose absolute American-odds difference meets
// minOddsDiff, sorted by difference descending.
//
// The raw signed American values are compared directly: a numerically larger
// signed value (+150 over +120, or -105 over -130) is always the better price
// for the bettor on that side. Comparing magnitudes instead of signed values
// is the classic mistake here; no decimal conversion is needed or wanted.
func (e *Engine) FindBestOdds(records []domain.PropRecord, minOddsDiff int) []domain.BestOddsEdge {
	var edges []domain.BestOddsEdge

	for _, g := range groupByLine(records) {
		if !distinctBooks(g.records) {
			continue
		}
		for i, a := range g.records {
			for _, b := range g.records[i+1:] {
				if a.Book == b.Book {
					continue
				}
				if edge, ok := sideEdge(a, b, domain.SideOver, minOddsDiff); ok {
					edges = append(edges, edge)
				}
				if edge, ok := sideEdge(a, b, domain.SideUnder, minOddsDiff); ok {
					edges = append(edges, edge)
				}
			}
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].OddsDifference > edges[j].OddsDifference
	})
	return edges
}

// sideEdge compares one side of two records at the same line. It is
// symmetric: swapping a and b yields the same difference and the same best
// book.
func sideEdge(a, b domain.PropRecord, side domain.Side, minOddsDiff int) (domain.BestOddsEdge, bool) {
	oddsA, oddsB := a.OverOdds, b.OverOdds
	if side == domain.SideUnder {
		oddsA, oddsB = a.UnderOdds, b.UnderOdds
	}
	if oddsA == nil || oddsB == nil {
		return domain.BestOddsEdge{}, false
	}

	diff := *oddsA - *oddsB
	if diff < 0 {
		diff = -diff
	}
	if diff < minOddsDiff {
		return domain.BestOddsEdge{}, false
	}

	best, other := a, b
	if *oddsB > *oddsA {
		best, other = b, a
	}
	bestOdds, otherOdds := best.OverOdds, other.OverOdds
	if side == domain.SideUnder {
		bestOdds, otherOdds = best.UnderOdds, other.UnderOdds
	}

	return domain.BestOddsEdge{
		Player:         a.Player,
		PropType:       a.PropType,
		Line:           a.Line,
		Game:           a.Game,
		Team:           a.Team,
		Side:           side,
		BestBook:       best.Book,
		BestOdds:       *bestOdds,
		OtherBook:      other.Book,
		OtherOdds:      *otherOdds,
		OddsDifference: diff,
	}, true
}
