// Package ingest implements the ingestion coordinator: it validates and
// normalizes raw candidate batches from the scraper clients and drives the
// store's atomic delete-then-replace refresh.
//
// Replacement, not merge, is deliberate: sportsbooks remove and re-quote
// markets between scrapes, so an upsert would accumulate stale lines that no
// longer exist on the book.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/normalize"
)

// defaultLockTTL bounds how long a refresh may hold its per-book lock.
const defaultLockTTL = 2 * time.Minute

// Coordinator serializes refreshes per sportsbook and applies them through
// the store one (book, game_date) transaction at a time. Refreshes for
// different books proceed concurrently; they touch disjoint rows.
type Coordinator struct {
	store    domain.PropStore
	locks    domain.LockManager // optional distributed lock across processes
	archiver *Archiver          // optional JSON snapshot backup
	lockTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	bookLocks map[domain.Book]*sync.Mutex
}

// NewCoordinator creates a Coordinator writing through the given store.
func NewCoordinator(store domain.PropStore, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		lockTTL:   defaultLockTTL,
		logger:    logger.With(slog.String("component", "ingest")),
		now:       time.Now,
		bookLocks: make(map[domain.Book]*sync.Mutex),
	}
}

// WithLockManager adds a distributed per-book lock on top of the in-process
// one, for deployments running more than one scraper instance.
func (c *Coordinator) WithLockManager(lm domain.LockManager, ttl time.Duration) *Coordinator {
	c.locks = lm
	if ttl > 0 {
		c.lockTTL = ttl
	}
	return c
}

// WithArchiver enables JSON snapshot backups after each successful refresh.
func (c *Coordinator) WithArchiver(a *Archiver) *Coordinator {
	c.archiver = a
	return c
}

// Refresh validates the candidate batch for one sportsbook and replaces the
// stored record set for every game date present in the batch. Each
// (book, date) pair is replaced in its own transaction; readers never observe
// an empty or mixed state for a pair. A store failure aborts that pair,
// rolls it back entirely, and is returned to the caller, who must retry the
// whole batch.
//
// An empty batch, or a batch with zero valid records, is a no-op reporting
// zero affected rows, not an error.
func (c *Coordinator) Refresh(ctx context.Context, book domain.Book, candidates []domain.CandidateRecord) (domain.RefreshResult, error) {
	book = domain.NewBook(string(book))
	result := domain.RefreshResult{
		RunID: uuid.New().String(),
		Book:  book,
	}
	if book == "" {
		return result, fmt.Errorf("ingest: empty sportsbook identifier")
	}

	byDate, dropped := c.validate(book, candidates)
	result.Dropped = dropped

	if len(byDate) == 0 {
		c.logger.InfoContext(ctx, "refresh is a no-op",
			slog.String("run_id", result.RunID),
			slog.String("book", book.String()),
			slog.Int("candidates", len(candidates)),
			slog.Int("dropped", dropped),
		)
		return result, nil
	}

	// At most one in-flight refresh per book. The local mutex serializes
	// goroutines in this process; the optional distributed lock serializes
	// across processes.
	local := c.bookMutex(book)
	local.Lock()
	defer local.Unlock()

	if c.locks != nil {
		unlock, err := c.locks.Acquire(ctx, "refresh:"+book.String(), c.lockTTL)
		if err != nil {
			return result, fmt.Errorf("ingest: acquire refresh lock for %s: %w", book, err)
		}
		defer unlock()
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		records := byDate[date]
		deleted, inserted, err := c.store.ReplaceDate(ctx, book, date, records)
		if err != nil {
			return result, fmt.Errorf("ingest: replace %s/%s: %w", book, date, err)
		}
		result.Dates = append(result.Dates, date)
		result.Deleted += deleted
		result.Inserted += inserted

		if c.archiver != nil {
			if err := c.archiver.Snapshot(ctx, book, date, records); err != nil {
				c.logger.WarnContext(ctx, "snapshot backup failed",
					slog.String("book", book.String()),
					slog.String("game_date", date),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	c.logger.InfoContext(ctx, "refresh complete",
		slog.String("run_id", result.RunID),
		slog.String("book", book.String()),
		slog.Any("dates", result.Dates),
		slog.Int("deleted", result.Deleted),
		slog.Int("inserted", result.Inserted),
		slog.Int("dropped", result.Dropped),
	)
	return result, nil
}

// validate normalizes candidates into records grouped by game date. Records
// that cannot be salvaged are dropped with a warning; a bad odds value on an
// otherwise good record resolves to an absent side, never to a wrong number.
// Full-key collisions inside the batch collapse to last-one-wins.
func (c *Coordinator) validate(book domain.Book, candidates []domain.CandidateRecord) (map[string][]domain.PropRecord, int) {
	scrapedAt := c.now().UTC()
	dropped := 0

	type slot struct {
		date string
		pos  int
	}
	byDate := make(map[string][]domain.PropRecord)
	seen := make(map[domain.PropKey]slot)

	for _, cand := range candidates {
		player := normalize.PlayerName(cand.Player)
		if player == "" {
			c.logger.Warn("dropping candidate with empty player",
				slog.String("book", book.String()),
				slog.String("game", cand.Game),
			)
			dropped++
			continue
		}

		date, err := domain.ParseGameDate(cand.GameDate)
		if err != nil {
			c.logger.Warn("dropping candidate with invalid game date",
				slog.String("book", book.String()),
				slog.String("player", player),
				slog.String("game_date", cand.GameDate),
			)
			dropped++
			continue
		}

		if cand.Line <= 0 {
			c.logger.Warn("dropping candidate with invalid line",
				slog.String("book", book.String()),
				slog.String("player", player),
				slog.Float64("line", cand.Line),
			)
			dropped++
			continue
		}

		record := domain.PropRecord{
			Player:    player,
			Team:      cand.Team,
			PropType:  normalize.PropType(cand.PropType),
			Line:      cand.Line,
			OverOdds:  c.parseOdds(book, player, "over", cand.OverOdds),
			UnderOdds: c.parseOdds(book, player, "under", cand.UnderOdds),
			Book:      book,
			GameDate:  date,
			Game:      cand.Game,
			ScrapedAt: scrapedAt,
		}
		if record.OverOdds == nil && record.UnderOdds == nil {
			c.logger.Warn("dropping candidate with no quoted side",
				slog.String("book", book.String()),
				slog.String("player", player),
				slog.String("prop_type", record.PropType),
			)
			dropped++
			continue
		}

		key := record.Key()
		if prev, ok := seen[key]; ok {
			c.logger.Warn("duplicate key in batch, keeping the later record",
				slog.String("book", book.String()),
				slog.String("player", player),
				slog.String("prop_type", record.PropType),
				slog.Float64("line", record.Line),
			)
			byDate[prev.date][prev.pos] = record
			dropped++
			continue
		}
		seen[key] = slot{date: date, pos: len(byDate[date])}
		byDate[date] = append(byDate[date], record)
	}

	return byDate, dropped
}

// parseOdds turns a raw display odds string into an American odds value.
// Empty means the side was never quoted; unparseable or zero values resolve
// to absent with a warning.
func (c *Coordinator) parseOdds(book domain.Book, player, side, raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := normalize.AmericanOdds(raw)
	if err != nil {
		c.logger.Warn("unparseable odds value, treating side as unquoted",
			slog.String("book", book.String()),
			slog.String("player", player),
			slog.String("side", side),
			slog.String("raw", raw),
		)
		return nil
	}
	return &v
}

func (c *Coordinator) bookMutex(book domain.Book) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.bookLocks[book]
	if !ok {
		m = &sync.Mutex{}
		c.bookLocks[book] = m
	}
	return m
}
