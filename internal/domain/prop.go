// Package domain defines the core types of the props comparison system:
// the normalized prop record, the derived cross-book views, the store
// interfaces, and the sentinel errors shared across packages.
package domain

import (
	"strings"
	"time"
)

// Book is a normalized sportsbook identifier. Books are compared
// case-insensitively; NewBook lowercases and trims so that two identifiers
// for the same book are always equal as values.
type Book string

// The books currently fed by the scraper clients. Nothing downstream depends
// on this list: the comparison engine works over whatever distinct books are
// present in a date's record set.
const (
	BookDraftKings Book = "draftkings"
	BookFanDuel    Book = "fanduel"
)

// NewBook normalizes a raw sportsbook label into a Book.
func NewBook(s string) Book {
	return Book(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the normalized identifier.
func (b Book) String() string { return string(b) }

// Side identifies which half of an over/under market a quote belongs to.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// GameDateLayout is the canonical calendar-date format used for the
// game_date key everywhere in the system.
const GameDateLayout = "2006-01-02"

// ParseGameDate validates a raw game date string and returns it in canonical
// form. It returns ErrInvalidDate for anything that is not a real calendar
// date in YYYY-MM-DD form.
func ParseGameDate(s string) (string, error) {
	t, err := time.Parse(GameDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(GameDateLayout), nil
}

// PropRecord is one quoted line for one player/market/book/date. At most one
// record exists per (player, prop_type, line, book, game_date) after any
// refresh completes; the store's unique index enforces this.
//
// OverOdds and UnderOdds are American odds; nil means that side is unquoted,
// which is a legitimate and common state, not an error. Non-nil odds are
// never zero.
type PropRecord struct {
	Player    string    `json:"player"`
	Team      string    `json:"team"`
	PropType  string    `json:"prop_type"`
	Line      float64   `json:"line"`
	OverOdds  *int      `json:"over_odds"`
	UnderOdds *int      `json:"under_odds"`
	Book      Book      `json:"sportsbook"`
	GameDate  string    `json:"game_date"`
	Game      string    `json:"game"`
	ScrapedAt time.Time `json:"scrape_timestamp"`
}

// PropKey is the full identity tuple of a record.
type PropKey struct {
	Player   string
	PropType string
	Line     float64
	Book     Book
	GameDate string
}

// Key returns the record's identity tuple.
func (r PropRecord) Key() PropKey {
	return PropKey{
		Player:   r.Player,
		PropType: r.PropType,
		Line:     r.Line,
		Book:     r.Book,
		GameDate: r.GameDate,
	}
}

// CandidateRecord is the raw shape a scraper client hands to the ingestion
// coordinator. Odds arrive as display strings and may contain unicode minus
// variants; the coordinator owns cleanup and parsing. An empty odds string
// means the side was not quoted.
type CandidateRecord struct {
	Player    string  `json:"player"`
	Team      string  `json:"team"`
	PropType  string  `json:"prop_type"`
	Line      float64 `json:"line"`
	OverOdds  string  `json:"over_odds"`
	UnderOdds string  `json:"under_odds"`
	GameDate  string  `json:"game_date"`
	Game      string  `json:"game"`
}
