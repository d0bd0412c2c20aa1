package filtering

import (
	"context"
	"strings"

	"github.com/rhysr01/jobping/internal/job"
)

// baseFilter carries the enable/disable bookkeeping shared by every step.
type baseFilter struct {
	disabled bool
	reason   string
}

func (b *baseFilter) Disable(reason string) {
	b.disabled = true
	b.reason = reason
}

func (b *baseFilter) IsEnabled() bool { return !b.disabled }

// excludeWhere returns a new list without the jobs for which drop returns
// true. The input list is never mutated: callers keep a usable candidate
// set even when a step drops everything.
func excludeWhere(jobs *job.Jobs, drop func(*job.Job) bool) (*job.Jobs, Step) {
	initial := jobs.Len()
	kept := make([]*job.Job, 0, initial)
	for _, j := range jobs.Items {
		if !drop(j) {
			kept = append(kept, j)
		}
	}
	out := &job.Jobs{Items: kept}
	return out, Step{Initial: initial, Dropped: initial - out.Len(), Left: out.Len()}
}

type teachingFilter struct{ baseFilter }

// NewTeaching creates a filter dropping teaching and education roles, unless
// the posting also frames itself as a business role.
func NewTeaching() Filter { return &teachingFilter{} }

func (f *teachingFilter) Name() string { return "teaching" }

func (f *teachingFilter) Apply(_ context.Context, _ Deps, jobs *job.Jobs) (*job.Jobs, Step, error) {
	out, step := excludeWhere(jobs, func(j *job.Job) bool {
		title := strings.ToLower(j.Title)
		if !containsAny(title, "teacher", "teaching", "tutor", "lecturer", "education officer") {
			return false
		}
		text := strings.ToLower(j.Title + " " + j.Description)
		return !strings.Contains(text, "business")
	})
	return out, step, nil
}

type legalFilter struct{ baseFilter }

// NewLegal creates a filter dropping legal roles unless they carry a
// compliance, regulatory or business-legal framing.
func NewLegal() Filter { return &legalFilter{} }

func (f *legalFilter) Name() string { return "legal" }

func (f *legalFilter) Apply(_ context.Context, _ Deps, jobs *job.Jobs) (*job.Jobs, Step, error) {
	out, step := excludeWhere(jobs, func(j *job.Job) bool {
		title := strings.ToLower(j.Title)
		if !containsAny(title, "legal", "lawyer", "solicitor", "paralegal", "attorney") {
			return false
		}
		text := strings.ToLower(j.Title + " " + j.Description)
		return !containsAny(text, "compliance", "regulatory", "business legal")
	})
	return out, step, nil
}

type assistantFilter struct{ baseFilter }

// NewAssistant creates a filter dropping virtual/executive/personal/
// administrative assistant roles.
func NewAssistant() Filter { return &assistantFilter{} }

func (f *assistantFilter) Name() string { return "assistant" }

func (f *assistantFilter) Apply(_ context.Context, _ Deps, jobs *job.Jobs) (*job.Jobs, Step, error) {
	out, step := excludeWhere(jobs, func(j *job.Job) bool {
		title := strings.ToLower(j.Title)
		return containsAny(title,
			"virtual assistant", "executive assistant",
			"personal assistant", "administrative assistant", "admin assistant",
		)
	})
	return out, step, nil
}

type managerFilter struct{ baseFilter }

// NewManager creates a filter dropping generic manager titles. A manager
// title survives when qualified as graduate/trainee/junior/entry/associate
// or when it is a compliance, regulatory, tax or legal manager role.
func NewManager() Filter { return &managerFilter{} }

func (f *managerFilter) Name() string { return "manager" }

var managerQualifiers = []string{
	"graduate", "trainee", "junior", "entry", "associate",
	"compliance", "regulatory", "tax", "legal",
}

func (f *managerFilter) Apply(_ context.Context, _ Deps, jobs *job.Jobs) (*job.Jobs, Step, error) {
	out, step := excludeWhere(jobs, func(j *job.Job) bool {
		title := strings.ToLower(j.Title)
		if !strings.Contains(title, "manager") {
			return false
		}
		return !containsAny(title, managerQualifiers...)
	})
	return out, step, nil
}

type languageFilter struct{ baseFilter }

// NewLanguage creates a filter dropping postings that demand a language the
// user does not speak, based on the structured requirement list extracted at
// classification time.
func NewLanguage() Filter { return &languageFilter{} }

func (f *languageFilter) Name() string { return "language" }

func (f *languageFilter) Apply(_ context.Context, deps Deps, jobs *job.Jobs) (*job.Jobs, Step, error) {
	spoken := make(map[string]bool)
	if deps.Prefs != nil {
		for _, lang := range deps.Prefs.Languages {
			spoken[strings.ToLower(strings.TrimSpace(lang))] = true
		}
	}

	out, step := excludeWhere(jobs, func(j *job.Job) bool {
		for _, required := range j.Languages {
			if !spoken[strings.ToLower(strings.TrimSpace(required))] {
				return true
			}
		}
		return false
	})
	return out, step, nil
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
