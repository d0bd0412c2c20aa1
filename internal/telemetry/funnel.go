// Package telemetry accumulates per-run funnel counters for the ingestion
// pipeline. The snapshot is the primary signal for catching a source that
// silently changed shape and stopped yielding eligible postings.
package telemetry

import (
	"sync"
	"time"
)

const (
	maxErrors  = 50
	maxSamples = 10
)

// Snapshot is the JSON-serializable view of a completed run.
type Snapshot struct {
	Source         string    `json:"source,omitempty"`
	Raw            int       `json:"raw"`
	Eligible       int       `json:"eligible"`
	CareerTagged   int       `json:"career_tagged"`
	LocationTagged int       `json:"location_tagged"`
	Inserted       int       `json:"inserted"`
	Updated        int       `json:"updated"`
	Errors         []string  `json:"errors,omitempty"`
	Samples        []string  `json:"samples,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitempty"`
}

// Funnel tracks counters through each ingestion stage. Safe for concurrent use.
type Funnel struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewFunnel starts a funnel for one source run.
func NewFunnel(source string) *Funnel {
	return &Funnel{snap: Snapshot{Source: source, StartedAt: time.Now().UTC()}}
}

func (f *Funnel) Raw(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Raw += n
}

func (f *Funnel) Eligible(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Eligible += n
}

func (f *Funnel) CareerTagged(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.CareerTagged += n
}

func (f *Funnel) LocationTagged(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.LocationTagged += n
}

func (f *Funnel) Inserted(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Inserted += n
}

func (f *Funnel) Updated(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Updated += n
}

// Error records an error message, bounded so a broken source cannot grow the
// snapshot without limit.
func (f *Funnel) Error(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snap.Errors) >= maxErrors {
		return
	}
	f.snap.Errors = append(f.snap.Errors, msg)
}

// Sample captures a short sample (typically a title) for spot checks.
func (f *Funnel) Sample(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snap.Samples) >= maxSamples {
		return
	}
	f.snap.Samples = append(f.snap.Samples, s)
}

// Snapshot finalizes and returns a copy of the current counters.
func (f *Funnel) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snap
	snap.FinishedAt = time.Now().UTC()
	snap.Errors = append([]string(nil), f.snap.Errors...)
	snap.Samples = append([]string(nil), f.snap.Samples...)
	return snap
}
