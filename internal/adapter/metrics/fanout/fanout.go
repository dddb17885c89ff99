package fanout

import (
	"time"

	"gridplan/internal/app/ports"
)

// Recorder forwards every call to each of its recorders in order.
type Recorder []ports.SolveMetrics

func New(recorders ...ports.SolveMetrics) Recorder {
	out := make(Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (f Recorder) RecordSolved(steps, explored int, elapsed time.Duration) {
	for _, r := range f {
		r.RecordSolved(steps, explored, elapsed)
	}
}

func (f Recorder) RecordFailure(reason string) {
	for _, r := range f {
		r.RecordFailure(reason)
	}
}

func (f Recorder) RecordReplan() {
	for _, r := range f {
		r.RecordReplan()
	}
}
