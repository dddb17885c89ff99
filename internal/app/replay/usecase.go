package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gridplan/internal/adapter/levelparser"
	"gridplan/internal/app/ports"
	"gridplan/internal/domain/grid"
)

var (
	ErrInvalidRequest = errors.New("invalid replay request")
	ErrCorruptRun     = errors.New("archived run does not replay")
)

// UseCase re-executes an archived run against its level and reports the
// remaining goal count after every step. Events is optional.
type UseCase struct {
	Runs   ports.RunRepository
	Events ports.SessionEventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" {
		return Response{}, ErrInvalidRequest
	}
	run, err := u.Runs.GetByID(ctx, req.RunID)
	if err != nil {
		return Response{}, err
	}
	lvl, err := levelparser.Parse(run.LevelText)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}
	state, err := lvl.State()
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}

	out := Response{
		RunID:     run.ID,
		LevelName: run.LevelName,
		Status:    run.Status,
		Steps:     make([]Step, 0, len(run.Actions)),
	}
	for i, line := range run.Actions {
		joint, err := grid.ParseJointAction(line)
		if err != nil {
			return Response{}, fmt.Errorf("%w: step %d: %v", ErrCorruptRun, i, err)
		}
		if state, err = state.TryApply(joint); err != nil {
			return Response{}, fmt.Errorf("%w: step %d: %v", ErrCorruptRun, i, err)
		}
		out.Steps = append(out.Steps, Step{Index: i, Action: line, GoalsLeft: state.GoalCount()})
	}
	out.Solved = state.IsGoalState()
	out.Final = state.String()

	if u.Events != nil {
		events, err := u.Events.ListByRunID(ctx, run.ID, req.Limit)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Response{}, err
		}
		out.Events = events
	}
	return out, nil
}
