package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fastClient(logger *zap.Logger) *Client {
	c := NewClient(logger)
	c.minInterval = 0
	return c
}

func TestGetJSONRetriesOnceOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := fastClient(zap.NewNop())

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	var body map[string]bool

	start := time.Now()
	if err := client.GetJSON(req, nil, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("expected decoded body")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if time.Since(start) < rateLimitBackoff {
		t.Fatalf("expected backoff before retry")
	}
}

func TestGetJSONFailsAfterSecond429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := fastClient(zap.NewNop())

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err := client.GetJSON(req, nil, nil); err == nil {
		t.Fatalf("expected error after second 429")
	}
}

func TestGetJSONBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := fastClient(zap.NewNop())

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err := client.GetJSON(req, nil, nil); err == nil {
		t.Fatalf("expected bad status error")
	}
}

type pagedAdapter struct {
	pages [][]*RawPosting
	calls int
}

func (a *pagedAdapter) Name() string { return "paged" }

func (a *pagedAdapter) FetchPage(_ context.Context, page int) ([]*RawPosting, error) {
	a.calls++
	if page >= len(a.pages) {
		return nil, nil
	}
	return a.pages[page], nil
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	adapter := &pagedAdapter{pages: [][]*RawPosting{
		{{Title: "a"}, {Title: "b"}},
		{{Title: "c"}},
	}}

	all, err := FetchAll(context.Background(), adapter, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(all))
	}
	if adapter.calls != 3 {
		t.Fatalf("expected 3 page calls (last one empty), got %d", adapter.calls)
	}
}

func TestFetchAllHonorsMaxPages(t *testing.T) {
	adapter := &pagedAdapter{pages: [][]*RawPosting{
		{{Title: "a"}}, {{Title: "b"}}, {{Title: "c"}}, {{Title: "d"}},
	}}

	all, err := FetchAll(context.Background(), adapter, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(all))
	}
}

func TestGreenhouseFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("expected content=true query")
		}
		w.Write([]byte(`{"jobs": [{
			"id": 4010,
			"title": "Graduate Software Engineer",
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/4010",
			"updated_at": "2026-08-01T10:00:00Z",
			"location": {"name": "Berlin, Germany"},
			"offices": [{"name": "Berlin HQ", "location": "Berlin"}],
			"content": "Join our graduate programme."
		}]}`))
	}))
	defer server.Close()

	gh := NewGreenhouse(zap.NewNop(), "acme", "Acme")
	gh.APIURL = server.URL
	gh.client.minInterval = 0

	postings, err := gh.FetchPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.ExternalID != "4010" {
		t.Fatalf("unexpected external id: %s", p.ExternalID)
	}
	if p.Location != "Berlin, Germany" {
		t.Fatalf("unexpected location: %s", p.Location)
	}
	if len(p.Offices) != 2 {
		t.Fatalf("expected office hints, got %v", p.Offices)
	}
	if p.PostedAt == nil {
		t.Fatalf("expected parsed posted_at")
	}
}

func TestLeverFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skip") != "50" {
			t.Errorf("expected skip=50 for page 1, got %s", r.URL.Query().Get("skip"))
		}
		w.Write([]byte(`[{
			"id": "abc-123",
			"text": "Marketing Intern",
			"hostedUrl": "https://jobs.lever.co/acme/abc-123",
			"country": "NL",
			"createdAt": 1756000000000,
			"categories": {"location": "Amsterdam, Netherlands", "commitment": "Internship"},
			"descriptionPlain": "Join the brand team."
		}]`))
	}))
	defer server.Close()

	lv := NewLever(zap.NewNop(), "acme", "Acme")
	lv.APIURL = server.URL
	lv.client.minInterval = 0

	postings, err := lv.FetchPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].ExternalID != "abc-123" {
		t.Fatalf("unexpected id: %s", postings[0].ExternalID)
	}
	if postings[0].PostedAt == nil {
		t.Fatalf("expected posted_at from createdAt millis")
	}
}
