package domain

import (
	"context"
	"io"
	"time"
)

// RefreshResult summarizes one ingestion run for a single sportsbook.
type RefreshResult struct {
	RunID    string   `json:"run_id"`
	Book     Book     `json:"sportsbook"`
	Dates    []string `json:"dates"`
	Deleted  int      `json:"deleted"`
	Inserted int      `json:"inserted"`
	Dropped  int      `json:"dropped"`
}

// PropStore persists prop records. ReplaceDate is the only mutating
// operation: a refresh replaces the entire record set for one
// (book, game_date) pair atomically; readers never observe a mid-refresh
// state.
type PropStore interface {
	// ReplaceDate deletes every record for (book, gameDate) and inserts the
	// given records in a single transaction. On error the previous state is
	// fully restored and the caller must retry the whole batch.
	ReplaceDate(ctx context.Context, book Book, gameDate string, records []PropRecord) (deleted, inserted int, err error)

	// ListDate returns all records for a date, optionally filtered to one
	// book (empty Book means all books), ordered by
	// (player, prop_type, sportsbook, line). This ordering defines the
	// tie-break order of every detector and must not change.
	ListDate(ctx context.Context, gameDate string, book Book) ([]PropRecord, error)

	// PlayerHistory returns a player's records for one market over a
	// trailing window of calendar days, newest first.
	PlayerHistory(ctx context.Context, player, propType string, days int) ([]PropRecord, error)

	// CountDate returns the number of records for a date, optionally
	// filtered to one book.
	CountDate(ctx context.Context, gameDate string, book Book) (int64, error)
}

// Detector kinds used as AnalysisCache keys.
const (
	AnalysisArbitrage     = "arbitrage"
	AnalysisDiscrepancies = "discrepancies"
	AnalysisBestOdds      = "best_odds"
)

// AnalysisCache holds serialized detector results keyed by detector kind and
// game date, so repeated API reads for the same date skip recomputation. A
// refresh invalidates the affected dates.
type AnalysisCache interface {
	// Get returns the cached payload or ErrNotFound on a miss.
	Get(ctx context.Context, kind, gameDate string) ([]byte, error)
	Set(ctx context.Context, kind, gameDate string, data []byte, ttl time.Duration) error
	InvalidateDate(ctx context.Context, gameDate string) error
}

// LockManager provides advisory locks used to serialize refreshes per book.
type LockManager interface {
	// Acquire obtains the lock for key or returns ErrLockHeld. The returned
	// function releases the lock and is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter bounds request rates per key over a rolling window.
type RateLimiter interface {
	// Allow reports whether the caller identified by key may proceed given
	// the limit per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BlobWriter stores snapshot backups in object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
