package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propscan/propscan/internal/domain"
)

// PropStore implements domain.PropStore using PostgreSQL.
type PropStore struct {
	pool *pgxpool.Pool
}

// NewPropStore creates a new PropStore backed by the given connection pool.
func NewPropStore(pool *pgxpool.Pool) *PropStore {
	return &PropStore{pool: pool}
}

const propCols = `player, team, prop_type, line, over_odds, under_odds,
	sportsbook, game_date, game, scrape_timestamp`

// ReplaceDate swaps the full record set for one (sportsbook, game_date) pair
// inside a single transaction. Concurrent readers see either the old set or
// the new set, never a partial one.
func (s *PropStore) ReplaceDate(ctx context.Context, book domain.Book, gameDate string, records []domain.PropRecord) (int, int, error) {
	date, err := time.Parse(domain.GameDateLayout, gameDate)
	if err != nil {
		return 0, 0, domain.ErrInvalidDate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: begin replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM prop_records WHERE sportsbook = $1 AND game_date = $2`,
		book.String(), date,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: delete %s/%s: %w", book, gameDate, err)
	}
	deleted := int(tag.RowsAffected())

	const insert = `
		INSERT INTO prop_records (` + propCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insert,
			r.Player, r.Team, r.PropType, r.Line,
			r.OverOdds, r.UnderOdds,
			book.String(), date, r.Game, r.ScrapedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, 0, fmt.Errorf("postgres: insert record %d for %s/%s: %w", i, book, gameDate, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, 0, fmt.Errorf("postgres: close insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("postgres: commit replace %s/%s: %w", book, gameDate, err)
	}
	return deleted, len(records), nil
}

// ListDate returns all records for a date, optionally filtered to one book,
// ordered by (player, prop_type, sportsbook, line). The detectors depend on
// this ordering for deterministic tie-breaks.
func (s *PropStore) ListDate(ctx context.Context, gameDate string, book domain.Book) ([]domain.PropRecord, error) {
	date, err := time.Parse(domain.GameDateLayout, gameDate)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}

	query := `SELECT ` + propCols + ` FROM prop_records WHERE game_date = $1`
	args := []any{date}
	if book != "" {
		query += ` AND sportsbook = $2`
		args = append(args, book.String())
	}
	query += ` ORDER BY player, prop_type, sportsbook, line`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list records for %s: %w", gameDate, err)
	}
	defer rows.Close()
	return scanPropRecords(rows)
}

// PlayerHistory returns a player's records for one market over a trailing
// window of calendar days, newest first.
func (s *PropStore) PlayerHistory(ctx context.Context, player, propType string, days int) ([]domain.PropRecord, error) {
	if days <= 0 {
		days = 30
	}

	const query = `
		SELECT ` + propCols + `
		FROM prop_records
		WHERE player = $1 AND prop_type = $2
		  AND game_date >= CURRENT_DATE - $3::int
		ORDER BY game_date DESC, sportsbook, line`

	rows, err := s.pool.Query(ctx, query, player, propType, days)
	if err != nil {
		return nil, fmt.Errorf("postgres: player history %s/%s: %w", player, propType, err)
	}
	defer rows.Close()
	return scanPropRecords(rows)
}

// CountDate returns the number of records for a date, optionally filtered to
// one book.
func (s *PropStore) CountDate(ctx context.Context, gameDate string, book domain.Book) (int64, error) {
	date, err := time.Parse(domain.GameDateLayout, gameDate)
	if err != nil {
		return 0, domain.ErrInvalidDate
	}

	query := `SELECT COUNT(*) FROM prop_records WHERE game_date = $1`
	args := []any{date}
	if book != "" {
		query += ` AND sportsbook = $2`
		args = append(args, book.String())
	}

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count records for %s: %w", gameDate, err)
	}
	return count, nil
}

func scanPropRecords(rows pgx.Rows) ([]domain.PropRecord, error) {
	var records []domain.PropRecord
	for rows.Next() {
		var (
			r    domain.PropRecord
			book string
			date time.Time
		)
		if err := rows.Scan(
			&r.Player, &r.Team, &r.PropType, &r.Line,
			&r.OverOdds, &r.UnderOdds,
			&book, &date, &r.Game, &r.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan prop record: %w", err)
		}
		r.Book = domain.Book(book)
		r.GameDate = date.Format(domain.GameDateLayout)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: prop record rows: %w", err)
	}
	return records, nil
}
