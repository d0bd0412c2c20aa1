// Package ai defines the scoring abstraction shared by the AI-backed and
// deterministic implementations. The orchestrator selects between them at a
// timeout/error boundary, so both are independently unit-testable.
package ai

import (
	"context"

	"github.com/rhysr01/jobping/internal/job"
)

// Method tags recorded on persisted matches for observability.
const (
	MethodAI         = "ai"
	MethodFallback   = "fallback"
	MethodIdempotent = "idempotent"
)

// ScoredJob is one scoring outcome, 0-1 scaled, with a human-readable reason.
type ScoredJob struct {
	JobHash string  `json:"job_hash"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Scorer scores a candidate batch against one user's preferences.
type Scorer interface {
	Name() string
	Score(ctx context.Context, prefs *job.UserPreferences, jobs []*job.Job) ([]ScoredJob, error)
}
