package store

import (
	"testing"

	"github.com/rhysr01/jobping/internal/job"
)

func TestSplitChunks(t *testing.T) {
	jobs := make([]*job.Job, 120)
	for i := range jobs {
		jobs[i] = &job.Job{}
	}

	chunks := splitChunks(jobs, 50)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 50 || len(chunks[1]) != 50 || len(chunks[2]) != 20 {
		t.Fatalf("unexpected chunk sizes: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if chunks := splitChunks(nil, 50); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input")
	}
}

func TestDedupeByCompositeKey(t *testing.T) {
	jobs := []*job.Job{
		{Title: "Graduate Engineer", Company: "Acme", Location: "berlin"},
		{Title: " graduate engineer ", Company: "ACME", Location: "Berlin"},
		{Title: "Graduate Engineer", Company: "Other", Location: "berlin"},
	}

	deduped, removed := dedupeByCompositeKey(jobs)
	if removed != 1 {
		t.Fatalf("expected 1 duplicate removed, got %d", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("expected 2 jobs left, got %d", len(deduped))
	}
	// First occurrence wins.
	if deduped[0].Company != "Acme" {
		t.Fatalf("expected first occurrence kept, got %s", deduped[0].Company)
	}
}
