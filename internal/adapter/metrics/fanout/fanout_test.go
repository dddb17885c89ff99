package fanout

import (
	"testing"
	"time"

	"gridplan/internal/adapter/metrics/inmemory"
)

func TestRecorderForwardsToAll(t *testing.T) {
	a, b := inmemory.NewRecorder(), inmemory.NewRecorder()
	f := New(a, nil, b)
	if len(f) != 2 {
		t.Fatalf("nil recorders must be dropped, got %d", len(f))
	}
	f.RecordSolved(3, 9, time.Millisecond)
	f.RecordFailure("cancelled")
	f.RecordReplan()

	for i, r := range []*inmemory.Recorder{a, b} {
		s := r.Snapshot()
		if s.SolveTotal != 2 || s.Replans != 1 || s.ByFailure["cancelled"] != 1 {
			t.Fatalf("recorder %d snapshot=%+v", i, s)
		}
	}
}
