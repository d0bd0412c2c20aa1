package match

import (
	"context"
	"strings"
	"time"

	"github.com/rhysr01/jobping/internal/ai"
	"github.com/rhysr01/jobping/internal/classify"
	"github.com/rhysr01/jobping/internal/job"
)

// Weights are the deterministic scoring factors. The numeric values are
// product-tuned defaults, not design invariants; override them per instance
// if tuning moves.
type Weights struct {
	CareerPath float64
	City       float64
	WorkEnv    float64
	Experience float64
	Language   float64
	Minor      float64

	CareerCityFloor float64
	CareerFloor     float64
	NoCareerCap     float64
	ScoreFloor      float64
}

// DefaultWeights returns the shipped scoring constants.
func DefaultWeights() Weights {
	return Weights{
		CareerPath:      0.35,
		City:            0.20,
		WorkEnv:         0.15,
		Experience:      0.10,
		Language:        0.10,
		Minor:           0.10,
		CareerCityFloor: 0.85,
		CareerFloor:     0.75,
		NoCareerCap:     0.65,
		ScoreFloor:      0.50,
	}
}

// FallbackScorer is the deterministic rule-based scorer used when AI scoring
// is disabled or fails. It never blocks: no I/O, no timeouts.
type FallbackScorer struct {
	weights Weights
	now     func() time.Time
}

// NewFallbackScorer creates the deterministic scorer with the given weights.
func NewFallbackScorer(weights Weights) *FallbackScorer {
	return &FallbackScorer{weights: weights, now: time.Now}
}

func (s *FallbackScorer) Name() string { return ai.MethodFallback }

func (s *FallbackScorer) Score(_ context.Context, prefs *job.UserPreferences, jobs []*job.Job) ([]ai.ScoredJob, error) {
	scored := make([]ai.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		score, reason := s.scoreOne(prefs, j)
		scored = append(scored, ai.ScoredJob{
			JobHash: j.Hash,
			Score:   score,
			Reason:  reason,
		})
	}
	return scored, nil
}

func (s *FallbackScorer) scoreOne(prefs *job.UserPreferences, j *job.Job) (float64, string) {
	w := s.weights

	careerMatch := careerOverlap(prefs.CareerPaths, j)
	cityMatch, city := cityOverlap(prefs.TargetCities, j)

	var score float64
	var reasons []string

	if careerMatch {
		score += w.CareerPath
		reasons = append(reasons, "career path match")
	}
	if cityMatch {
		score += w.City
		reasons = append(reasons, "located in "+city)
	}
	if envScore, ok := workEnvFit(prefs.WorkEnvironment, j.WorkEnvironment); ok {
		score += w.WorkEnv * envScore
		if envScore == 1 {
			reasons = append(reasons, "preferred work environment")
		}
	}
	if experienceFit(j) {
		score += w.Experience
		reasons = append(reasons, "early-career role")
	}
	if languageFit(prefs.Languages, j.Languages) {
		score += w.Language
	}
	score += w.Minor * minorFactors(prefs, j, s.now())

	// Career-path dominance: floors when the dominant signal is present,
	// a cap plus a floor when it is absent so results are never degenerate.
	switch {
	case careerMatch && cityMatch:
		score = max(score, w.CareerCityFloor)
	case careerMatch:
		score = max(score, w.CareerFloor)
	default:
		score = min(score, w.NoCareerCap)
		score = max(score, w.ScoreFloor)
	}
	score = min(score, 1)

	if len(reasons) == 0 {
		reasons = append(reasons, "general early-career opportunity")
	}

	return score, strings.Join(reasons, ", ")
}

func careerOverlap(paths []string, j *job.Job) bool {
	for _, p := range paths {
		if j.HasCategory(strings.ToLower(strings.TrimSpace(p))) {
			return true
		}
	}
	return false
}

func cityOverlap(cities []string, j *job.Job) (bool, string) {
	loc := strings.ToLower(j.Location + " " + j.City)
	for _, c := range cities {
		city := strings.ToLower(strings.TrimSpace(c))
		if city != "" && strings.Contains(loc, city) {
			return true, c
		}
	}
	return false, ""
}

// workEnvFit returns a 0-1 compatibility score. An absent preference is
// neutral rather than penalizing.
func workEnvFit(pref, env string) (float64, bool) {
	if pref == "" {
		return 0.5, true
	}
	if env == "" {
		return 0.3, true
	}
	if strings.EqualFold(pref, env) {
		return 1, true
	}
	// Hybrid partially satisfies both remote and office preferences.
	if env == job.EnvHybrid || pref == job.EnvHybrid {
		return 0.6, true
	}
	return 0.1, true
}

func experienceFit(j *job.Job) bool {
	return j.IsGraduate || j.IsInternship || j.HasCategory(classify.CategoryEarlyCareer)
}

func languageFit(spoken, required []string) bool {
	if len(required) == 0 {
		return true
	}
	speaks := make(map[string]bool, len(spoken))
	for _, l := range spoken {
		speaks[strings.ToLower(strings.TrimSpace(l))] = true
	}
	for _, r := range required {
		if !speaks[strings.ToLower(strings.TrimSpace(r))] {
			return false
		}
	}
	return true
}

// minorFactors folds skills, company-culture and timing signals into one
// 0-1 value.
func minorFactors(prefs *job.UserPreferences, j *job.Job, now time.Time) float64 {
	var score float64

	if len(prefs.Skills) > 0 {
		text := strings.ToLower(j.Description)
		hits := 0
		for _, skill := range prefs.Skills {
			if strings.Contains(text, strings.ToLower(strings.TrimSpace(skill))) {
				hits++
			}
		}
		score += 0.5 * float64(hits) / float64(len(prefs.Skills))
	}

	if IsPremiumCompany(j.Company) {
		score += 0.2
	}

	if j.PostedAt != nil && now.Sub(*j.PostedAt) <= 7*24*time.Hour {
		score += 0.3
	}

	return min(score, 1)
}
