package job

import "testing"

func TestCompositeKeyLowersAndTrims(t *testing.T) {
	j := &Job{Title: " Graduate Engineer ", Company: "Acme", Location: "Berlin, Germany"}
	got := j.CompositeKey()
	want := "graduate engineer|acme|berlin, germany"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExcludeRemovesByHash(t *testing.T) {
	jobs := &Jobs{Items: []*Job{
		{Hash: "a"}, {Hash: "b"}, {Hash: "c"},
	}}

	excluded := jobs.Exclude([]string{"b", "missing"})
	if len(excluded) != 1 || excluded[0] != "b" {
		t.Fatalf("unexpected excluded set: %v", excluded)
	}
	if jobs.Len() != 2 {
		t.Fatalf("expected 2 jobs left, got %d", jobs.Len())
	}
	if jobs.FindByHash("b") != nil {
		t.Fatalf("job b should be gone")
	}
}

func TestAddCategoryDeduplicates(t *testing.T) {
	j := &Job{}
	j.AddCategory("tech")
	j.AddCategory("tech")
	j.AddCategory("early-career")
	if len(j.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", j.Categories)
	}
}

func TestReportBySourceGroups(t *testing.T) {
	jobs := &Jobs{Items: []*Job{
		{Source: "greenhouse", Title: "A"},
		{Source: "greenhouse", Title: "B"},
		{Source: "lever", Title: "C"},
	}}

	report := jobs.ReportBySource()
	if len(report["greenhouse"]) != 2 {
		t.Fatalf("expected 2 greenhouse entries, got %d", len(report["greenhouse"]))
	}
	if len(report["lever"]) != 1 {
		t.Fatalf("expected 1 lever entry, got %d", len(report["lever"]))
	}
}
