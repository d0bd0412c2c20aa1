package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/util"
)

const (
	upsertChunkSize  = 50
	interChunkDelay  = 200 * time.Millisecond
	defaultFetchSort = "posted_at DESC NULLS LAST, last_seen_at DESC"
)

// JobStore persists canonical postings keyed by identity hash.
type JobStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewJobStore(pool *pgxpool.Pool, logger *zap.Logger) *JobStore {
	return &JobStore{pool: pool, logger: logger}
}

// UpsertResult reports what one batch upsert did.
type UpsertResult struct {
	Inserted int
	Updated  int
	Errors   []error
}

// UpsertJobs writes a batch keyed on job_hash with update-on-conflict
// semantics. The batch is pre-deduplicated in memory by composite key,
// then processed in fixed-size chunks with a small delay between chunks.
// A failed chunk is logged and skipped; the remaining chunks still run.
func (s *JobStore) UpsertJobs(ctx context.Context, jobs []*job.Job) UpsertResult {
	var result UpsertResult

	deduped, removed := dedupeByCompositeKey(jobs)
	if removed > 0 {
		s.logger.Info("removed in-batch duplicates",
			zap.Int("duplicates", removed),
			zap.Int("remaining", len(deduped)),
		)
	}

	for _, chunk := range splitChunks(deduped, upsertChunkSize) {
		inserted, updated, err := s.upsertChunk(ctx, chunk)
		if err != nil {
			s.logger.Error("chunk upsert failed, skipping",
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Inserted += inserted
		result.Updated += updated

		if err := util.WaitFor(ctx, interChunkDelay); err != nil {
			result.Errors = append(result.Errors, err)
			return result
		}
	}

	return result
}

func (s *JobStore) upsertChunk(ctx context.Context, chunk []*job.Job) (inserted, updated int, err error) {
	for _, j := range chunk {
		var wasInsert bool
		err := s.pool.QueryRow(ctx, `
			INSERT INTO jobs (
				job_hash, title, company, location, city, country, description,
				apply_url, categories, work_environment, is_internship, is_graduate,
				language_requirements, source, posted_at, scrape_timestamp,
				last_seen_at, created_at, is_active, status, filtered_reason
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
			ON CONFLICT (job_hash) DO UPDATE SET
				title = EXCLUDED.title,
				location = EXCLUDED.location,
				description = EXCLUDED.description,
				categories = EXCLUDED.categories,
				work_environment = EXCLUDED.work_environment,
				is_internship = EXCLUDED.is_internship,
				is_graduate = EXCLUDED.is_graduate,
				language_requirements = EXCLUDED.language_requirements,
				posted_at = COALESCE(EXCLUDED.posted_at, jobs.posted_at),
				scrape_timestamp = EXCLUDED.scrape_timestamp,
				last_seen_at = EXCLUDED.last_seen_at,
				is_active = EXCLUDED.is_active,
				status = EXCLUDED.status,
				filtered_reason = EXCLUDED.filtered_reason
			RETURNING (xmax = 0)`,
			j.Hash, j.Title, j.Company, j.Location, j.City, j.Country, j.Description,
			j.ApplyURL, j.Categories, j.WorkEnvironment, j.IsInternship, j.IsGraduate,
			j.Languages, j.Source, j.PostedAt, j.ScrapeTimestamp,
			j.LastSeenAt, j.CreatedAt, j.IsActive, j.Status, j.FilteredReason,
		).Scan(&wasInsert)
		if err != nil {
			return inserted, updated, fmt.Errorf("upsert %s: %w", j.Hash, err)
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, nil
}

// DeactivateMissing soft-deactivates postings from a source that the latest
// scrape no longer reports.
func (s *JobStore) DeactivateMissing(ctx context.Context, sourceName string, seenHashes []string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET is_active = FALSE, status = $3
		WHERE source = $1 AND is_active = TRUE AND NOT (job_hash = ANY($2))`,
		sourceName, seenHashes, job.StatusInactive,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate missing: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CandidateQuery bounds a candidate fetch for matching.
type CandidateQuery struct {
	FreshnessDays int
	Limit         int
	// CareerPaths narrows to postings carrying any of the given category
	// tags. Empty means no career filter.
	CareerPaths []string
	// RequireApplyURL keeps only postings with a non-empty apply URL.
	// Used by the last relaxation tier.
	RequireApplyURL bool
}

// FetchCandidates selects active, non-filtered jobs inside the freshness
// window. A null posted_at means "freshness unknown" and is always included.
// Results are capped at the query limit and ordered by recency.
func (s *JobStore) FetchCandidates(ctx context.Context, q CandidateQuery) ([]*job.Job, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -q.FreshnessDays)

	sql := `
		SELECT job_hash, title, company, location, city, country, description,
		       apply_url, categories, work_environment, is_internship, is_graduate,
		       language_requirements, source, posted_at, scrape_timestamp,
		       last_seen_at, created_at, is_active, status, filtered_reason
		FROM jobs
		WHERE is_active = TRUE
		  AND status = 'active'
		  AND (posted_at IS NULL OR posted_at >= $1)`
	args := []any{cutoff}

	if len(q.CareerPaths) > 0 {
		sql += fmt.Sprintf(" AND categories && $%d", len(args)+1)
		args = append(args, q.CareerPaths)
	}
	if q.RequireApplyURL {
		sql += " AND apply_url <> ''"
	}

	sql += " ORDER BY " + defaultFetchSort
	sql += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, q.Limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		var j job.Job
		if err := rows.Scan(
			&j.Hash, &j.Title, &j.Company, &j.Location, &j.City, &j.Country, &j.Description,
			&j.ApplyURL, &j.Categories, &j.WorkEnvironment, &j.IsInternship, &j.IsGraduate,
			&j.Languages, &j.Source, &j.PostedAt, &j.ScrapeTimestamp,
			&j.LastSeenAt, &j.CreatedAt, &j.IsActive, &j.Status, &j.FilteredReason,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func dedupeByCompositeKey(jobs []*job.Job) ([]*job.Job, int) {
	seen := make(map[string]bool, len(jobs))
	deduped := make([]*job.Job, 0, len(jobs))
	removed := 0
	for _, j := range jobs {
		key := j.CompositeKey()
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		deduped = append(deduped, j)
	}
	return deduped, removed
}

func splitChunks(jobs []*job.Job, size int) [][]*job.Job {
	if size <= 0 {
		return [][]*job.Job{jobs}
	}
	var chunks [][]*job.Job
	for start := 0; start < len(jobs); start += size {
		end := start + size
		if end > len(jobs) {
			end = len(jobs)
		}
		chunks = append(chunks, jobs[start:end])
	}
	return chunks
}
