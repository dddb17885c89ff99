package ports

import "time"

// SolveMetrics receives one call per finished solve.
type SolveMetrics interface {
	RecordSolved(steps, explored int, elapsed time.Duration)
	RecordFailure(reason string)
	RecordReplan()
}
