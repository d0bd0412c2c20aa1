package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/ai"
	"github.com/rhysr01/jobping/internal/filtering"
	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/logger"
	"github.com/rhysr01/jobping/internal/store"
)

// ErrNoJobsAvailable reports that every relaxation tier came back empty.
// Distinct from a scoring failure: there was simply nothing to match.
var ErrNoJobsAvailable = errors.New("no jobs available after relaxation")

// CandidateStore fetches scored-match candidates.
type CandidateStore interface {
	FetchCandidates(ctx context.Context, q store.CandidateQuery) ([]*job.Job, error)
}

// ResultStore persists and counts delivered matches.
type ResultStore interface {
	CountMatches(ctx context.Context, email, tier string) (int, error)
	SaveMatches(ctx context.Context, tier string, matches []*job.Match) error
}

// RunMarker is the distributed run guard. AcquireRun returns false when a
// concurrent or recently completed run holds the marker.
type RunMarker interface {
	AcquireRun(ctx context.Context, email, tier string) (bool, error)
	ReleaseRun(ctx context.Context, email, tier string) error
}

// Outcome is the result of one matching run.
type Outcome struct {
	Matches []*job.Match
	// Jobs are the selected postings in match order, for review surfaces.
	Jobs *job.Jobs
	// Method records how the scores were produced: ai, fallback, or
	// idempotent when an earlier run already delivered.
	Method string
	Count  int
}

// Orchestrator drives one user's matching run end to end: idempotency check,
// candidate fetch with relaxation, hard filtering, scoring dispatch with
// deterministic fallback, selection and persistence.
type Orchestrator struct {
	jobs    CandidateStore
	results ResultStore
	marker  RunMarker
	scorer  ai.Scorer
	// fallback is consulted when scorer is nil or errors. Always set.
	fallback ai.Scorer
	filters  []filtering.Filter
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator wires the matching run. scorer may be nil to force
// deterministic scoring; marker may be nil when no run guard is configured.
func NewOrchestrator(jobs CandidateStore, results ResultStore, marker RunMarker, scorer ai.Scorer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		jobs:     jobs,
		results:  results,
		marker:   marker,
		scorer:   scorer,
		fallback: NewFallbackScorer(DefaultWeights()),
		filters:  filtering.DefaultSteps(),
		logger:   log,
		now:      time.Now,
	}
}

// SetFilters replaces the hard exclusion pipeline. Used by the CLI to
// disable individual steps.
func (o *Orchestrator) SetFilters(filters []filtering.Filter) {
	o.filters = filters
}

// Run executes the matching run for one user.
func (o *Orchestrator) Run(ctx context.Context, prefs *job.UserPreferences) (*Outcome, error) {
	cfg := ForTier(prefs.Tier)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tier config: %w", err)
	}

	log := o.logger.With(zap.String("user", prefs.Email), zap.String("tier", cfg.Tier))

	// Idempotency: an existing delivery or a held run marker short-circuits
	// without touching the scorer.
	existing, err := o.results.CountMatches(ctx, prefs.Email, cfg.Tier)
	if err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	if existing > 0 {
		log.Info("matches already delivered", zap.Int("count", existing))
		return &Outcome{Method: ai.MethodIdempotent, Count: existing}, nil
	}
	if o.marker != nil {
		acquired, err := o.marker.AcquireRun(ctx, prefs.Email, cfg.Tier)
		if err != nil {
			return nil, fmt.Errorf("acquire run marker: %w", err)
		}
		if !acquired {
			log.Info("run marker held, skipping")
			return &Outcome{Method: ai.MethodIdempotent}, nil
		}
	}

	outcome, err := o.runLocked(ctx, log, cfg, prefs)
	if err != nil && o.marker != nil {
		// Release so a retry is possible; on success the marker expires
		// via its TTL and keeps duplicate runs out in the meantime.
		if relErr := o.marker.ReleaseRun(ctx, prefs.Email, cfg.Tier); relErr != nil {
			log.Warn("release run marker", zap.Error(relErr))
		}
	}
	return outcome, err
}

func (o *Orchestrator) runLocked(ctx context.Context, log *zap.Logger, cfg Config, prefs *job.UserPreferences) (*Outcome, error) {
	candidates, err := o.collectCandidates(ctx, log, cfg, prefs)
	if err != nil {
		return nil, err
	}

	tierPrefs := scoringPrefs(cfg, prefs)
	scored, method := o.score(ctx, log, cfg, tierPrefs, candidates.Items)
	if len(scored) == 0 {
		return nil, ErrNoJobsAvailable
	}

	selected := Select(scored, tierPrefs, cfg.MaxMatches)

	matches := make([]*job.Match, 0, len(selected))
	selectedJobs := &job.Jobs{Items: make([]*job.Job, 0, len(selected))}
	matchedAt := o.now().UTC()
	for _, c := range selected {
		selectedJobs.Items = append(selectedJobs.Items, c.Job)
		matches = append(matches, &job.Match{
			UserEmail: prefs.Email,
			JobHash:   c.Job.Hash,
			Score:     c.Score,
			Reason:    c.Reason,
			Method:    method,
			MatchedAt: matchedAt,
		})
	}

	if err := o.results.SaveMatches(ctx, cfg.Tier, matches); err != nil {
		return nil, fmt.Errorf("save matches: %w", err)
	}

	log.Info("matching run complete",
		zap.Int("candidates", candidates.Len()),
		zap.Int("matches", len(matches)),
		zap.String(logger.FieldMethod, method),
	)

	return &Outcome{Matches: matches, Jobs: selectedJobs, Method: method, Count: len(matches)}, nil
}

// collectCandidates walks the relaxation ladder until a rung yields
// candidates that survive the hard filters: the tier window with career
// filter, a tripled window with and then without the career filter, and
// finally a year of anything with an apply URL. A rung whose candidates are
// all excluded by the filters keeps relaxing rather than failing; the final
// rung skips the filters entirely.
func (o *Orchestrator) collectCandidates(ctx context.Context, log *zap.Logger, cfg Config, prefs *job.UserPreferences) (*job.Jobs, error) {
	careers := effectiveCareerPaths(cfg, prefs)

	for _, status := range filtering.Describe(o.filters) {
		log.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
		)
	}

	ladder := []struct {
		name  string
		query store.CandidateQuery
		last  bool
	}{
		{
			name: "tier_window",
			query: store.CandidateQuery{
				FreshnessDays: cfg.FreshnessDays,
				Limit:         cfg.MaxJobsToFetch,
				CareerPaths:   careers,
			},
		},
		{
			name: "extended_window",
			query: store.CandidateQuery{
				FreshnessDays: cfg.FreshnessDays * 3,
				Limit:         cfg.MaxJobsToFetch,
				CareerPaths:   careers,
			},
		},
		{
			name: "extended_window_any_career",
			query: store.CandidateQuery{
				FreshnessDays: cfg.FreshnessDays * 3,
				Limit:         cfg.MaxJobsToFetch,
			},
		},
		{
			name: "any_with_apply_url",
			query: store.CandidateQuery{
				FreshnessDays:   365,
				Limit:           cfg.MaxJobsToFetch,
				RequireApplyURL: true,
			},
			last: true,
		},
	}

	for _, rung := range ladder {
		found, err := o.jobs.FetchCandidates(ctx, rung.query)
		if err != nil {
			return nil, fmt.Errorf("fetch candidates (%s): %w", rung.name, err)
		}
		if len(found) == 0 {
			continue
		}

		jobs := &job.Jobs{Items: found}
		if !rung.last {
			filtered, err := filtering.Run(ctx, filtering.Deps{Logger: log, Prefs: prefs}, o.filters, jobs)
			if err != nil {
				return nil, fmt.Errorf("hard filters: %w", err)
			}
			if filtered.Len() == 0 {
				log.Info("all candidates excluded by hard filters, relaxing further",
					zap.String("relaxation", rung.name),
					zap.Int("excluded", jobs.Len()),
				)
				continue
			}
			jobs = filtered
		}

		if rung.name != "tier_window" {
			log.Info("relaxed candidate fetch",
				zap.String("relaxation", rung.name),
				zap.Int("found", jobs.Len()),
			)
		}
		return jobs, nil
	}

	return nil, ErrNoJobsAvailable
}

// effectiveCareerPaths narrows the career filter per tier: free users match
// on their primary path only, premium users on all of them.
func effectiveCareerPaths(cfg Config, prefs *job.UserPreferences) []string {
	if len(prefs.CareerPaths) == 0 {
		return nil
	}
	if cfg.Tier == TierFree {
		return prefs.CareerPaths[:1]
	}
	return prefs.CareerPaths
}

// scoringPrefs applies the same tier narrowing to the preferences the
// scorers see, so a free-tier run never scores against secondary career
// paths even when a relaxation rung dropped the fetch-side career filter.
func scoringPrefs(cfg Config, prefs *job.UserPreferences) *job.UserPreferences {
	narrowed := effectiveCareerPaths(cfg, prefs)
	if len(narrowed) == len(prefs.CareerPaths) {
		return prefs
	}
	p := *prefs
	p.CareerPaths = narrowed
	return &p
}

// score dispatches to the AI scorer when configured and falls back to the
// deterministic scorer on any error. Returns candidates joined with their
// scores plus the method tag.
func (o *Orchestrator) score(ctx context.Context, log *zap.Logger, cfg Config, prefs *job.UserPreferences, jobs []*job.Job) ([]Candidate, string) {
	byHash := make(map[string]*job.Job, len(jobs))
	for _, j := range jobs {
		byHash[j.Hash] = j
	}

	if cfg.UseAI && o.scorer != nil {
		batch := jobs
		if len(batch) > cfg.MaxJobsToAI {
			batch = batch[:cfg.MaxJobsToAI]
		}
		scored, err := o.scorer.Score(ctx, prefs, batch)
		if err == nil {
			return joinScores(scored, byHash, 0), ai.MethodAI
		}
		log.Warn("ai scoring failed, using deterministic fallback", zap.Error(err))
	}

	scored, err := o.fallback.Score(ctx, prefs, jobs)
	if err != nil {
		// The deterministic scorer cannot fail today; guard anyway.
		log.Error("fallback scoring failed", zap.Error(err))
		return nil, ai.MethodFallback
	}
	return joinScores(scored, byHash, cfg.FallbackThreshold), ai.MethodFallback
}

// joinScores resolves scored hashes back to their jobs, dropping unknown
// hashes and anything under the threshold.
func joinScores(scored []ai.ScoredJob, byHash map[string]*job.Job, threshold float64) []Candidate {
	out := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		j, ok := byHash[s.JobHash]
		if !ok || s.Score < threshold {
			continue
		}
		out = append(out, Candidate{Job: j, Score: s.Score, Reason: s.Reason})
	}
	return out
}
