package filtering

import (
	"context"
	"testing"

	"github.com/rhysr01/jobping/internal/job"
)

func runFilter(t *testing.T, f Filter, deps Deps, jobs ...*job.Job) *job.Jobs {
	t.Helper()
	list := &job.Jobs{Items: jobs}
	out, _, err := f.Apply(context.Background(), deps, list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestTeachingFilter(t *testing.T) {
	out := runFilter(t, NewTeaching(), Deps{},
		&job.Job{Hash: "1", Title: "English Teacher"},
		&job.Job{Hash: "2", Title: "Business Education Teacher", Description: "business school role"},
		&job.Job{Hash: "3", Title: "Graduate Engineer"},
	)

	if out.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", out.Len())
	}
	if out.FindByHash("1") != nil {
		t.Fatalf("plain teacher role should be dropped")
	}
	if out.FindByHash("2") == nil {
		t.Fatalf("business-framed teaching role should survive")
	}
}

func TestLegalFilter(t *testing.T) {
	out := runFilter(t, NewLegal(), Deps{},
		&job.Job{Hash: "1", Title: "Paralegal"},
		&job.Job{Hash: "2", Title: "Legal Compliance Analyst"},
	)

	if out.Len() != 1 || out.FindByHash("2") == nil {
		t.Fatalf("expected only the compliance role to survive")
	}
}

func TestAssistantFilter(t *testing.T) {
	out := runFilter(t, NewAssistant(), Deps{},
		&job.Job{Hash: "1", Title: "Executive Assistant"},
		&job.Job{Hash: "2", Title: "Assistant Brand Manager Graduate"},
	)

	if out.Len() != 1 || out.FindByHash("2") == nil {
		t.Fatalf("only the executive assistant should be dropped")
	}
}

func TestManagerFilter(t *testing.T) {
	out := runFilter(t, NewManager(), Deps{},
		&job.Job{Hash: "1", Title: "Account Manager"},
		&job.Job{Hash: "2", Title: "Graduate Account Manager"},
		&job.Job{Hash: "3", Title: "Tax Manager"},
		&job.Job{Hash: "4", Title: "Engineering Manager"},
	)

	if out.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", out.Len())
	}
	if out.FindByHash("2") == nil || out.FindByHash("3") == nil {
		t.Fatalf("qualified manager roles should survive")
	}
}

func TestLanguageFilter(t *testing.T) {
	prefs := &job.UserPreferences{Languages: []string{"English", "German"}}
	out := runFilter(t, NewLanguage(), Deps{Prefs: prefs},
		&job.Job{Hash: "1", Languages: []string{"German"}},
		&job.Job{Hash: "2", Languages: []string{"French"}},
		&job.Job{Hash: "3"},
	)

	if out.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", out.Len())
	}
	if out.FindByHash("2") != nil {
		t.Fatalf("french-requiring job should be dropped")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	input := &job.Jobs{Items: []*job.Job{
		{Hash: "1", Title: "English Teacher"},
		{Hash: "2", Title: "French Teacher"},
	}}

	out, _, err := NewTeaching().Apply(context.Background(), Deps{}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected every job dropped, got %d", out.Len())
	}
	if input.Len() != 2 {
		t.Fatalf("input list must survive a full exclusion, got %d", input.Len())
	}
}

func TestRunPipelineOrderAndStats(t *testing.T) {
	jobs := &job.Jobs{Items: []*job.Job{
		{Hash: "1", Title: "English Teacher"},
		{Hash: "2", Title: "Engineering Manager"},
		{Hash: "3", Title: "Graduate Software Engineer"},
	}}

	out, err := Run(context.Background(), Deps{Prefs: &job.UserPreferences{Languages: []string{"English"}}}, DefaultSteps(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || out.FindByHash("3") == nil {
		t.Fatalf("expected only the graduate engineer to survive, got %d", out.Len())
	}
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	f := NewTeaching()
	f.Disable("testing")

	jobs := &job.Jobs{Items: []*job.Job{{Hash: "1", Title: "English Teacher"}}}
	out, err := Run(context.Background(), Deps{}, []Filter{f}, jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("disabled filter must not drop jobs")
	}
}
