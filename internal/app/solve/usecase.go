package solve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"gridplan/internal/adapter/levelparser"
	"gridplan/internal/app/coordinator"
	"gridplan/internal/app/ports"
	"gridplan/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid solve request")

type Solver interface {
	Solve(ctx context.Context, root *world.State) (coordinator.Result, error)
}

// UseCase parses a level, solves it and archives the run. Runs, Metrics
// and Log are optional.
type UseCase struct {
	Solver   Solver
	Runs     ports.RunRepository
	Metrics  ports.SolveMetrics
	Strategy string
	Log      hclog.Logger
	Now      func() time.Time
	NewID    func() string
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.LevelText) == "" {
		return Response{}, fmt.Errorf("%w: empty level", ErrInvalidRequest)
	}
	lvl, err := levelparser.Parse(req.LevelText)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	root, err := lvl.State()
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return u.ExecuteState(ctx, StateRequest{
		Domain:    lvl.Domain,
		LevelName: lvl.Name,
		LevelText: req.LevelText,
		Root:      root,
	})
}

func (u UseCase) ExecuteState(ctx context.Context, req StateRequest) (Response, error) {
	if req.Root == nil {
		return Response{}, fmt.Errorf("%w: missing state", ErrInvalidRequest)
	}
	started := u.now()
	res, solveErr := u.Solver.Solve(ctx, req.Root)

	run := ports.RunRecord{
		ID:        u.newID(),
		LevelName: req.LevelName,
		Domain:    req.Domain,
		LevelText: req.LevelText,
		Strategy:  u.Strategy,
		Explored:  res.Explored,
		Generated: res.Generated,
		Helpers:   res.Helpers,
		Duration:  u.now().Sub(started),
		CreatedAt: started,
	}
	resp := Response{
		RunID:     run.ID,
		LevelName: req.LevelName,
		SubLevels: len(res.SubLevels),
		Explored:  res.Explored,
		Generated: res.Generated,
		Helpers:   res.Helpers,
		Duration:  run.Duration,
	}
	if solveErr != nil {
		run.Status = ports.RunFailed
		run.Error = solveErr.Error()
		u.logger().Warn("solve failed", "level", req.LevelName, "run_id", run.ID, "error", solveErr)
		if u.Metrics != nil {
			u.Metrics.RecordFailure(failureReason(solveErr))
		}
		if err := u.save(ctx, run); err != nil {
			return resp, errors.Join(solveErr, err)
		}
		return resp, solveErr
	}

	run.Status = ports.RunSolved
	run.Actions = make([]string, 0, len(res.Actions))
	for _, joint := range res.Actions {
		run.Actions = append(run.Actions, joint.String())
	}
	run.Length = len(res.Actions)
	resp.Solved = true
	resp.Actions = run.Actions
	resp.Length = run.Length
	resp.Joint = res.Actions

	if u.Metrics != nil {
		u.Metrics.RecordSolved(run.Length, run.Explored, run.Duration)
	}
	u.logger().Info("level solved", "level", req.LevelName, "run_id", run.ID, "length", run.Length, "explored", run.Explored)
	if err := u.save(ctx, run); err != nil {
		return resp, fmt.Errorf("save run: %w", err)
	}
	return resp, nil
}

func (u UseCase) save(ctx context.Context, run ports.RunRecord) error {
	if u.Runs == nil {
		return nil
	}
	return u.Runs.Save(ctx, run)
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u UseCase) newID() string {
	if u.NewID != nil {
		return u.NewID()
	}
	return uuid.NewString()
}

func (u UseCase) logger() hclog.Logger {
	if u.Log != nil {
		return u.Log
	}
	return hclog.NewNullLogger()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, coordinator.ErrUnsolvable):
		return "unsolvable"
	case errors.Is(err, coordinator.ErrInvalidPlan):
		return "invalid_plan"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
