package domain

// The derived views below are computed on demand by the comparison engine and
// never persisted. Each one is a read over the current record set for a
// single game date.

// ArbitrageOpportunity is a pair of complementary quotes at the same line
// whose combined implied probability is below 100%, guaranteeing profit.
type ArbitrageOpportunity struct {
	Player        string  `json:"player"`
	PropType      string  `json:"prop_type"`
	Line          float64 `json:"line"`
	Game          string  `json:"game"`
	Team          string  `json:"team"`
	OverBook      Book    `json:"bet_over"`
	OverOdds      int     `json:"over_odds"`
	UnderBook     Book    `json:"bet_under"`
	UnderOdds     int     `json:"under_odds"`
	ProfitPercent float64 `json:"profit_percent"`
}

// BookQuote is one book's side of a cross-book comparison.
type BookQuote struct {
	Book      Book    `json:"sportsbook"`
	Line      float64 `json:"line"`
	OverOdds  *int    `json:"over_odds"`
	UnderOdds *int    `json:"under_odds"`
}

// LineDiscrepancy reports two books quoting different lines for the same
// player/market. The legs are book-parametrized rather than named after any
// particular sportsbook.
type LineDiscrepancy struct {
	Player         string       `json:"player"`
	PropType       string       `json:"prop_type"`
	Game           string       `json:"game"`
	Team           string       `json:"team"`
	Books          [2]BookQuote `json:"books"`
	LineDifference float64      `json:"line_difference"`
}

// BestOddsEdge reports one book pricing the same side of the same line
// better than another. "Better" means the numerically larger signed American
// value; see the comparison engine for why no decimal conversion is needed.
type BestOddsEdge struct {
	Player         string  `json:"player"`
	PropType       string  `json:"prop_type"`
	Line           float64 `json:"line"`
	Game           string  `json:"game"`
	Team           string  `json:"team"`
	Side           Side    `json:"side"`
	BestBook       Book    `json:"best_book"`
	BestOdds       int     `json:"best_odds"`
	OtherBook      Book    `json:"other_book"`
	OtherOdds      int     `json:"other_odds"`
	OddsDifference int     `json:"odds_difference"`
}
