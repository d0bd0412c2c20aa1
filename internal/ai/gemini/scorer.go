package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/ai"
	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultTimeout      = 30 * time.Second
)

// Scorer scores candidate batches with Gemini. Every call carries a hard
// timeout: the orchestrator treats any error, including the deadline, as a
// signal to fall back to the deterministic scorer.
type Scorer struct {
	generator contentGenerator
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

// NewScorer wraps a content generator into an ai.Scorer.
func NewScorer(generator contentGenerator, timeout time.Duration, maxLogLength int, logger *zap.Logger) *Scorer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		timeout:   timeout,
		maxLogLen: maxLogLength,
		logger:    logger,
	}
}

func (s *Scorer) Name() string { return ai.MethodAI }

// promptJob is the reduced job view sent to the model.
type promptJob struct {
	JobHash    string   `json:"job_hash"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	Categories []string `json:"categories"`
	WorkEnv    string   `json:"work_environment,omitempty"`
	Languages  []string `json:"language_requirements,omitempty"`
}

func (s *Scorer) Score(ctx context.Context, prefs *job.UserPreferences, jobs []*job.Job) ([]ai.ScoredJob, error) {
	if prefs == nil {
		return nil, fmt.Errorf("user preferences are required")
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt, err := s.buildPrompt(prefs, jobs)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring request",
		zap.String("user_email", prefs.Email),
		zap.Int("jobs", len(jobs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring response",
		zap.String("user_email", prefs.Email),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	scored, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return reconcile(scored, jobs)
}

func (s *Scorer) buildPrompt(prefs *job.UserPreferences, jobs []*job.Job) (string, error) {
	prefsJSON, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal preferences: %w", err)
	}

	view := make([]promptJob, 0, len(jobs))
	for _, j := range jobs {
		view = append(view, promptJob{
			JobHash:    j.Hash,
			Title:      j.Title,
			Company:    j.Company,
			Location:   j.Location,
			Categories: j.Categories,
			WorkEnv:    j.WorkEnvironment,
			Languages:  j.Languages,
		})
	}
	jobsJSON, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal jobs: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "User:\n{{PREFS_JSON}}\n\nJobs:\n{{JOBS_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{PREFS_JSON}}", string(prefsJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOBS_JSON}}", string(jobsJSON))
	return prompt, nil
}

func parseResponse(raw string) ([]ai.ScoredJob, error) {
	cleaned := extractJSON(raw)

	var entries []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	scored := make([]ai.ScoredJob, 0, len(entries))
	for _, entry := range entries {
		score := coerceFloat(entry["score"])
		if math.IsNaN(score) {
			continue
		}
		scored = append(scored, ai.ScoredJob{
			JobHash: coerceString(entry["job_hash"]),
			Score:   clamp(score),
			Reason:  coerceString(entry["reason"]),
		})
	}
	return scored, nil
}

// reconcile keeps only entries referencing a real candidate hash. An empty
// intersection means the model produced garbage: callers fall back.
func reconcile(scored []ai.ScoredJob, jobs []*job.Job) ([]ai.ScoredJob, error) {
	known := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		known[j.Hash] = true
	}

	kept := scored[:0]
	for _, sj := range scored {
		if known[sj.JobHash] {
			kept = append(kept, sj)
		}
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("gemini response referenced no known job hashes")
	}
	return kept, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clamp(score float64) float64 {
	if score > 1 {
		// Some responses come back 0-100 scaled.
		score = score / 100
	}
	return math.Max(0, math.Min(1, score))
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
