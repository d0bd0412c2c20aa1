package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhysr01/jobping/internal/job"
)

// MatchStore persists matching run results. The (user_email, tier, job_hash)
// primary key makes a second run for the same user idempotent at the storage
// layer even under concurrent requests.
type MatchStore struct {
	pool *pgxpool.Pool
}

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// CountMatches returns how many match rows exist for (email, tier).
func (s *MatchStore) CountMatches(ctx context.Context, email, tier string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE user_email = $1 AND tier = $2`,
		email, tier,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

// SaveMatches inserts the result set for one run. Conflicting rows are left
// untouched so a concurrent duplicate run cannot alter an already persisted
// result.
func (s *MatchStore) SaveMatches(ctx context.Context, tier string, matches []*job.Match) error {
	for _, m := range matches {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO matches (user_email, tier, job_hash, score, reason, method, matched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_email, tier, job_hash) DO NOTHING`,
			m.UserEmail, tier, m.JobHash, m.Score, m.Reason, m.Method, m.MatchedAt,
		)
		if err != nil {
			return fmt.Errorf("save match %s: %w", m.JobHash, err)
		}
	}
	return nil
}
