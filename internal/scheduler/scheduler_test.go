package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/telemetry"
)

type stubRunner struct {
	ran chan struct{}
}

func (r *stubRunner) Run(context.Context) []telemetry.Snapshot {
	r.ran <- struct{}{}
	return nil
}

func TestSchedulerSpec(t *testing.T) {
	s := New(&stubRunner{}, 6, zap.NewNop())
	if s.spec != "@every 6h" {
		t.Fatalf("unexpected cron spec %q", s.spec)
	}
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &stubRunner{ran: make(chan struct{}, 1)}
	s := New(runner, 6, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate ingest cycle on start")
	}
}
