package solve

import (
	"time"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

type Request struct {
	LevelText string `json:"level"`
}

// StateRequest solves an already built state; LevelText is what gets
// archived with the run.
type StateRequest struct {
	Domain    string
	LevelName string
	LevelText string
	Root      *world.State
}

type Response struct {
	RunID     string             `json:"run_id"`
	LevelName string             `json:"level_name"`
	Solved    bool               `json:"solved"`
	Actions   []string           `json:"actions"`
	Length    int                `json:"length"`
	SubLevels int                `json:"sub_levels"`
	Explored  int                `json:"explored"`
	Generated int                `json:"generated"`
	Helpers   int                `json:"helpers"`
	Duration  time.Duration      `json:"duration_ns"`
	Joint     []grid.JointAction `json:"-"`
}
