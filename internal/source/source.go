// Package source fetches raw, source-shaped postings from external job
// boards. Each adapter owns its own pagination, request interval and
// rate-limit backoff; no call-rate state is shared between adapters.
package source

import (
	"context"
	"time"
)

// RawPosting is the source-shaped record handed to the normalizer. Fields
// beyond Source/Title/Company are best-effort: adapters fill what their API
// exposes.
type RawPosting struct {
	Source      string
	ExternalID  string
	URL         string
	Title       string
	Company     string
	Location    string
	City        string
	Country     string
	Offices     []string
	Description string
	Languages   []string
	PostedAt    *time.Time
}

// Adapter is a per-source client producing raw postings page by page.
type Adapter interface {
	Name() string
	// FetchPage returns the postings on the given zero-based page. An empty
	// slice with a nil error signals the end of pagination.
	FetchPage(ctx context.Context, page int) ([]*RawPosting, error)
}

// FetchAll drains an adapter, stopping at the first empty page or after
// maxPages. A failed page is returned alongside the postings collected so
// far: callers decide whether partial results are usable.
func FetchAll(ctx context.Context, adapter Adapter, maxPages int) ([]*RawPosting, error) {
	var all []*RawPosting
	for page := 0; page < maxPages; page++ {
		batch, err := adapter.FetchPage(ctx, page)
		if err != nil {
			return all, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}
