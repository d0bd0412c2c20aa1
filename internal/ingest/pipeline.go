// Package ingest runs the scrape-to-store pipeline: fetch raw postings per
// source, normalize, classify, validate and persist, with funnel telemetry
// for every stage.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/classify"
	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/normalize"
	"github.com/rhysr01/jobping/internal/source"
	"github.com/rhysr01/jobping/internal/store"
	"github.com/rhysr01/jobping/internal/telemetry"
)

const defaultMaxPages = 20

// Store is the persistence surface the pipeline writes to.
type Store interface {
	UpsertJobs(ctx context.Context, jobs []*job.Job) store.UpsertResult
	DeactivateMissing(ctx context.Context, sourceName string, seenHashes []string) (int64, error)
}

// Pipeline ingests postings from all configured sources.
type Pipeline struct {
	sources  []source.Adapter
	store    Store
	logger   *zap.Logger
	maxPages int
}

// New creates the ingest pipeline over the given adapters.
func New(sources []source.Adapter, st Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		sources:  sources,
		store:    st,
		logger:   logger,
		maxPages: defaultMaxPages,
	}
}

// SetMaxPages bounds how many pages each adapter is drained for.
func (p *Pipeline) SetMaxPages(n int) {
	if n > 0 {
		p.maxPages = n
	}
}

// Run ingests every source sequentially. A failing source never aborts the
// others; its partial results are persisted and its funnel records the
// error. The returned snapshots carry one funnel per source.
func (p *Pipeline) Run(ctx context.Context) []telemetry.Snapshot {
	snapshots := make([]telemetry.Snapshot, 0, len(p.sources))
	for _, adapter := range p.sources {
		snapshots = append(snapshots, p.runSource(ctx, adapter))
	}
	return snapshots
}

func (p *Pipeline) runSource(ctx context.Context, adapter source.Adapter) telemetry.Snapshot {
	funnel := telemetry.NewFunnel(adapter.Name())
	log := p.logger.With(zap.String("source", adapter.Name()))

	raw, err := source.FetchAll(ctx, adapter, p.maxPages)
	if err != nil {
		// Partial results are still worth persisting.
		funnel.Error(err.Error())
		log.Warn("fetch incomplete", zap.Int("fetched", len(raw)), zap.Error(err))
	}
	funnel.Raw(len(raw))

	jobs := p.classifyBatch(raw, funnel, log)

	corrected := classify.ValidateBatch(jobs, log)
	if corrected > 0 {
		log.Info("classification conflicts corrected", zap.Int("corrected", corrected))
	}

	if len(jobs) > 0 {
		result := p.store.UpsertJobs(ctx, jobs)
		funnel.Inserted(result.Inserted)
		funnel.Updated(result.Updated)
		for _, upsertErr := range result.Errors {
			funnel.Error(upsertErr.Error())
		}

		seen := (&job.Jobs{Items: jobs}).Hashes()
		deactivated, err := p.store.DeactivateMissing(ctx, adapter.Name(), seen)
		if err != nil {
			funnel.Error(err.Error())
			log.Warn("deactivate missing", zap.Error(err))
		} else if deactivated > 0 {
			log.Info("deactivated vanished postings", zap.Int64("count", deactivated))
		}
	}

	snap := funnel.Snapshot()
	log.Info("source ingested",
		zap.Int("raw", snap.Raw),
		zap.Int("eligible", snap.Eligible),
		zap.Int("inserted", snap.Inserted),
		zap.Int("updated", snap.Updated),
		zap.Int("errors", len(snap.Errors)),
	)
	return snap
}

// classifyBatch normalizes and classifies every raw posting, recording the
// funnel stages. Postings that fail normalization are counted and skipped;
// everything else is kept, carrying its active or filtered status.
func (p *Pipeline) classifyBatch(raw []*source.RawPosting, funnel *telemetry.Funnel, log *zap.Logger) []*job.Job {
	jobs := make([]*job.Job, 0, len(raw))
	for _, posting := range raw {
		j, err := normalize.Normalize(posting)
		if err != nil {
			funnel.Error(err.Error())
			continue
		}

		res := classify.Classify(j)
		if res.EarlyCareer {
			funnel.Eligible(1)
			funnel.Sample(j.Title)
		} else if j.Status == job.StatusActive {
			// Already-filtered postings keep their location reason.
			j.IsActive = false
			j.Status = job.StatusFiltered
			j.FilteredReason = "not early-career"
		}
		if res.CareerPath != classify.CategoryUnknown {
			funnel.CareerTagged(1)
		}
		if res.EULocated {
			funnel.LocationTagged(1)
		}
		if res.Ambiguous {
			log.Debug("ambiguous classification", zap.String("title", j.Title))
		}

		jobs = append(jobs, j)
	}
	return jobs
}
