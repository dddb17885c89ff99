package inmemory

import (
	"sync"
	"time"
)

type Snapshot struct {
	SolveTotal    uint64            `json:"solve_total"`
	SolveSuccess  uint64            `json:"solve_success"`
	SolveFailure  uint64            `json:"solve_failure"`
	Replans       uint64            `json:"replans"`
	StepsTotal    uint64            `json:"steps_total"`
	ExploredTotal uint64            `json:"explored_total"`
	AvgSolveMS    float64           `json:"avg_solve_ms"`
	ByFailure     map[string]uint64 `json:"by_failure"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	failure   uint64
	replans   uint64
	steps     uint64
	explored  uint64
	elapsed   time.Duration
	byFailure map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byFailure: map[string]uint64{},
	}
}

func (r *Recorder) RecordSolved(steps, explored int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.steps += uint64(steps)
	r.explored += uint64(explored)
	r.elapsed += elapsed
}

func (r *Recorder) RecordFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
	r.byFailure[reason]++
}

func (r *Recorder) RecordReplan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replans++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		SolveSuccess:  r.success,
		SolveFailure:  r.failure,
		SolveTotal:    r.success + r.failure,
		Replans:       r.replans,
		StepsTotal:    r.steps,
		ExploredTotal: r.explored,
		ByFailure:     make(map[string]uint64, len(r.byFailure)),
	}
	if r.success > 0 {
		out.AvgSolveMS = float64(r.elapsed.Milliseconds()) / float64(r.success)
	}
	for k, v := range r.byFailure {
		out.ByFailure[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
