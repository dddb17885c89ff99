package ports

import (
	"context"
	"time"
)

type RunStatus string

const (
	RunSolved RunStatus = "solved"
	RunFailed RunStatus = "failed"
)

// RunRecord archives one solve: the level it ran on and the joint actions
// it produced, one wire-formatted line per step.
type RunRecord struct {
	ID        string
	LevelName string
	Domain    string
	LevelText string
	Status    RunStatus
	Strategy  string
	Actions   []string
	Length    int
	Explored  int
	Generated int
	Helpers   int
	Duration  time.Duration
	Error     string
	CreatedAt time.Time
}

type RunRepository interface {
	Save(ctx context.Context, run RunRecord) error
	GetByID(ctx context.Context, id string) (RunRecord, error)
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

// SessionEvent is a notable moment of a client session: a rejected step,
// a replan, the final outcome.
type SessionEvent struct {
	Type       string         `json:"type"`
	Step       int            `json:"step"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type SessionEventRepository interface {
	Append(ctx context.Context, runID string, events []SessionEvent) error
	ListByRunID(ctx context.Context, runID string, limit int) ([]SessionEvent, error)
}
