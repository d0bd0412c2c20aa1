package telemetry

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestFunnelCounters(t *testing.T) {
	f := NewFunnel("greenhouse")
	f.Raw(10)
	f.Eligible(6)
	f.CareerTagged(5)
	f.LocationTagged(4)
	f.Inserted(3)
	f.Updated(1)
	f.Error("page 2: bad status")
	f.Sample("Graduate Engineer")

	snap := f.Snapshot()
	if snap.Raw != 10 || snap.Eligible != 6 || snap.Inserted != 3 || snap.Updated != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if len(snap.Errors) != 1 || len(snap.Samples) != 1 {
		t.Fatalf("unexpected errors/samples: %+v", snap)
	}
	if snap.FinishedAt.IsZero() {
		t.Fatalf("expected finished timestamp")
	}
}

func TestFunnelBoundsErrorsAndSamples(t *testing.T) {
	f := NewFunnel("lever")
	for i := 0; i < maxErrors+20; i++ {
		f.Error(fmt.Sprintf("err %d", i))
	}
	for i := 0; i < maxSamples+5; i++ {
		f.Sample(fmt.Sprintf("sample %d", i))
	}

	snap := f.Snapshot()
	if len(snap.Errors) != maxErrors {
		t.Fatalf("expected %d errors, got %d", maxErrors, len(snap.Errors))
	}
	if len(snap.Samples) != maxSamples {
		t.Fatalf("expected %d samples, got %d", maxSamples, len(snap.Samples))
	}
}

func TestSnapshotSerializes(t *testing.T) {
	f := NewFunnel("greenhouse")
	f.Raw(1)

	data, err := json.Marshal(f.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected serialized snapshot")
	}
}
