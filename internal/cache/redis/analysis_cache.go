package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/propscan/propscan/internal/domain"
)

// analysisKinds are the detector kinds cached per game date. InvalidateDate
// clears all of them.
var analysisKinds = []string{
	domain.AnalysisArbitrage,
	domain.AnalysisDiscrepancies,
	domain.AnalysisBestOdds,
}

// AnalysisCache implements domain.AnalysisCache using plain Redis strings
// holding pre-serialized JSON payloads.
//
// Key schema:
//
//	analysis:{kind}:{game_date}
type AnalysisCache struct {
	rdb *redis.Client
}

// NewAnalysisCache creates an AnalysisCache backed by the given Client.
func NewAnalysisCache(c *Client) *AnalysisCache {
	return &AnalysisCache{rdb: c.Underlying()}
}

func analysisKey(kind, gameDate string) string {
	return "analysis:" + kind + ":" + gameDate
}

// Get returns the cached payload for (kind, gameDate) or domain.ErrNotFound
// on a miss.
func (ac *AnalysisCache) Get(ctx context.Context, kind, gameDate string) ([]byte, error) {
	data, err := ac.rdb.Get(ctx, analysisKey(kind, gameDate)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get analysis %s/%s: %w", kind, gameDate, err)
	}
	return data, nil
}

// Set stores a payload for (kind, gameDate) with the given TTL.
func (ac *AnalysisCache) Set(ctx context.Context, kind, gameDate string, data []byte, ttl time.Duration) error {
	if err := ac.rdb.Set(ctx, analysisKey(kind, gameDate), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set analysis %s/%s: %w", kind, gameDate, err)
	}
	return nil
}

// InvalidateDate drops every cached detector result for a game date. Called
// after a refresh lands new records for that date.
func (ac *AnalysisCache) InvalidateDate(ctx context.Context, gameDate string) error {
	keys := make([]string, 0, len(analysisKinds))
	for _, kind := range analysisKinds {
		keys = append(keys, analysisKey(kind, gameDate))
	}
	if err := ac.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: invalidate analysis for %s: %w", gameDate, err)
	}
	return nil
}

var _ domain.AnalysisCache = (*AnalysisCache)(nil)
