package match

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/ai"
	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/store"
)

type stubCandidateStore struct {
	// byRelaxation maps freshness days to the jobs returned at that rung.
	byRelaxation map[int][]*job.Job
	queries      []store.CandidateQuery
	err          error
}

func (s *stubCandidateStore) FetchCandidates(_ context.Context, q store.CandidateQuery) ([]*job.Job, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return s.byRelaxation[q.FreshnessDays], nil
}

type stubResultStore struct {
	existing int
	saved    []*job.Match
	savedTo  string
}

func (s *stubResultStore) CountMatches(context.Context, string, string) (int, error) {
	return s.existing, nil
}

func (s *stubResultStore) SaveMatches(_ context.Context, tier string, matches []*job.Match) error {
	s.savedTo = tier
	s.saved = append(s.saved, matches...)
	return nil
}

type stubMarker struct {
	acquired bool
	releases int
}

func (s *stubMarker) AcquireRun(context.Context, string, string) (bool, error) {
	return s.acquired, nil
}

func (s *stubMarker) ReleaseRun(context.Context, string, string) error {
	s.releases++
	return nil
}

type stubScorer struct {
	name   string
	scored []ai.ScoredJob
	err    error
	calls  int
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(context.Context, *job.UserPreferences, []*job.Job) ([]ai.ScoredJob, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scored, nil
}

func techJob(hash string) *job.Job {
	return &job.Job{
		Hash:       hash,
		Title:      "Graduate Software Engineer",
		Company:    "NoName Ltd",
		Location:   "London, United Kingdom",
		Categories: []string{"early-career", "tech"},
		IsGraduate: true,
	}
}

func TestOrchestratorHappyPathWithAI(t *testing.T) {
	cfg := ForTier(TierFree)
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays: {techJob("j1"), techJob("j2")},
	}}
	results := &stubResultStore{}
	scorer := &stubScorer{name: ai.MethodAI, scored: []ai.ScoredJob{
		{JobHash: "j1", Score: 0.9, Reason: "strong fit"},
		{JobHash: "j2", Score: 0.8, Reason: "good fit"},
	}}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, scorer, zap.NewNop())
	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if outcome.Method != ai.MethodAI {
		t.Fatalf("expected method %q, got %q", ai.MethodAI, outcome.Method)
	}
	if outcome.Count != 2 || len(results.saved) != 2 {
		t.Fatalf("expected 2 persisted matches, got outcome=%d saved=%d", outcome.Count, len(results.saved))
	}
	if results.savedTo != TierFree {
		t.Fatalf("matches saved under tier %q", results.savedTo)
	}
	if outcome.Jobs.Len() != 2 {
		t.Fatalf("outcome should carry the selected jobs, got %d", outcome.Jobs.Len())
	}
	for _, m := range results.saved {
		if m.Method != ai.MethodAI {
			t.Fatalf("persisted match carries method %q", m.Method)
		}
		if m.UserEmail != "alex@example.com" {
			t.Fatalf("persisted match for wrong user %q", m.UserEmail)
		}
	}
}

func TestOrchestratorExistingMatchesShortCircuit(t *testing.T) {
	scorer := &stubScorer{name: ai.MethodAI}
	o := NewOrchestrator(&stubCandidateStore{}, &stubResultStore{existing: 5}, &stubMarker{acquired: true}, scorer, zap.NewNop())

	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Method != ai.MethodIdempotent {
		t.Fatalf("expected idempotent outcome, got %q", outcome.Method)
	}
	if outcome.Count != 5 {
		t.Fatalf("expected existing count 5, got %d", outcome.Count)
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must not run on an idempotent short-circuit, ran %d times", scorer.calls)
	}
}

func TestOrchestratorHeldRunMarker(t *testing.T) {
	scorer := &stubScorer{name: ai.MethodAI}
	o := NewOrchestrator(&stubCandidateStore{}, &stubResultStore{}, &stubMarker{acquired: false}, scorer, zap.NewNop())

	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Method != ai.MethodIdempotent {
		t.Fatalf("held marker should yield an idempotent outcome, got %q", outcome.Method)
	}
	if scorer.calls != 0 {
		t.Fatal("scorer must not run when the marker is held")
	}
}

func TestOrchestratorAIFailureFallsBack(t *testing.T) {
	cfg := ForTier(TierFree)
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays: {techJob("j1")},
	}}
	results := &stubResultStore{}
	scorer := &stubScorer{name: ai.MethodAI, err: errors.New("quota exceeded")}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, scorer, zap.NewNop())
	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if outcome.Method != ai.MethodFallback {
		t.Fatalf("expected fallback after AI failure, got %q", outcome.Method)
	}
	if outcome.Count != 1 {
		t.Fatalf("expected 1 deterministic match, got %d", outcome.Count)
	}
}

func TestOrchestratorRelaxationLadder(t *testing.T) {
	cfg := ForTier(TierFree)
	// Nothing in the tier window; candidates appear only at the tripled
	// window without the career filter.
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays * 3: {techJob("j1")},
	}}
	results := &stubResultStore{}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, nil, zap.NewNop())
	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Count != 1 {
		t.Fatalf("expected relaxed fetch to deliver 1 match, got %d", outcome.Count)
	}

	if len(jobs.queries) < 2 {
		t.Fatalf("expected at least 2 ladder queries, got %d", len(jobs.queries))
	}
	first := jobs.queries[0]
	if first.FreshnessDays != cfg.FreshnessDays || len(first.CareerPaths) == 0 {
		t.Fatalf("first rung must use the tier window with a career filter: %+v", first)
	}
}

func TestOrchestratorNoJobsAnywhere(t *testing.T) {
	marker := &stubMarker{acquired: true}
	o := NewOrchestrator(&stubCandidateStore{}, &stubResultStore{}, marker, nil, zap.NewNop())

	_, err := o.Run(context.Background(), londonTechPrefs())
	if !errors.Is(err, ErrNoJobsAvailable) {
		t.Fatalf("expected ErrNoJobsAvailable, got %v", err)
	}
	if marker.releases != 1 {
		t.Fatalf("failed run must release the marker, released %d times", marker.releases)
	}
}

func TestOrchestratorLastRungSkipsHardFilters(t *testing.T) {
	// A teaching role would normally be excluded by the hard filters; on
	// the final relaxation rung everything with an apply URL survives.
	teaching := &job.Job{
		Hash:       "t1",
		Title:      "Graduate Teacher",
		Company:    "School Trust",
		Location:   "Leeds",
		ApplyURL:   "https://example.com/apply",
		Categories: []string{"early-career"},
	}
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		365: {teaching},
	}}
	results := &stubResultStore{}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, nil, zap.NewNop())
	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Count != 1 {
		t.Fatalf("last rung should bypass exclusion filters, got %d matches", outcome.Count)
	}
}

func TestOrchestratorKeepsRelaxingWhenFiltersExcludeEverything(t *testing.T) {
	// Every rung returns the same posting requiring a language the user
	// does not speak. The hard filters exclude it on rungs one to three;
	// the final rung skips them and must still deliver.
	german := &job.Job{
		Hash:       "g1",
		Title:      "Graduate Software Engineer",
		Company:    "Berlin GmbH",
		Location:   "Berlin, Germany",
		ApplyURL:   "https://example.com/apply",
		Categories: []string{"early-career", "tech"},
		Languages:  []string{"German"},
	}
	cfg := ForTier(TierFree)
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays:     {german},
		cfg.FreshnessDays * 3: {german},
		365:                   {german},
	}}
	results := &stubResultStore{}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, nil, zap.NewNop())
	outcome, err := o.Run(context.Background(), londonTechPrefs())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Count != 1 {
		t.Fatalf("expected the final rung to deliver 1 match, got %d", outcome.Count)
	}
	if len(jobs.queries) != 4 {
		t.Fatalf("expected every ladder rung to be consulted, got %d queries", len(jobs.queries))
	}
}

func TestOrchestratorFreeTierScoresPrimaryCareerOnly(t *testing.T) {
	// A free user's secondary career path must not influence scoring even
	// when a relaxed fetch returned jobs outside the primary path.
	prefs := londonTechPrefs()
	prefs.CareerPaths = []string{"marketing", "tech"}
	prefs.TargetCities = nil
	cfg := ForTier(TierFree)

	techOnly := &job.Job{
		Hash:       "j1",
		Title:      "Junior Developer",
		Company:    "SmallCo",
		Location:   "Madrid, Spain",
		ApplyURL:   "https://example.com/apply",
		Categories: []string{"tech"},
	}
	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays: {techOnly},
	}}
	results := &stubResultStore{}

	o := NewOrchestrator(jobs, results, &stubMarker{acquired: true}, nil, zap.NewNop())
	if _, err := o.Run(context.Background(), prefs); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(results.saved) != 1 {
		t.Fatalf("expected 1 persisted match, got %d", len(results.saved))
	}
	if got := results.saved[0].Score; got > 0.65 {
		t.Fatalf("secondary-path job must score as no-career-overlap (cap 0.65), got %.2f", got)
	}
}

func TestOrchestratorFreeTierUsesPrimaryCareerOnly(t *testing.T) {
	prefs := londonTechPrefs()
	prefs.CareerPaths = []string{"tech", "finance"}
	cfg := ForTier(TierFree)

	jobs := &stubCandidateStore{byRelaxation: map[int][]*job.Job{
		cfg.FreshnessDays: {techJob("j1")},
	}}
	o := NewOrchestrator(jobs, &stubResultStore{}, &stubMarker{acquired: true}, nil, zap.NewNop())
	if _, err := o.Run(context.Background(), prefs); err != nil {
		t.Fatalf("run: %v", err)
	}

	first := jobs.queries[0]
	if len(first.CareerPaths) != 1 || first.CareerPaths[0] != "tech" {
		t.Fatalf("free tier should query the primary career path only, got %v", first.CareerPaths)
	}
}
