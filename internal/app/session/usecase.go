package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"gridplan/internal/adapter/levelparser"
	"gridplan/internal/app/ports"
	"gridplan/internal/app/solve"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

var ErrRejected = errors.New("server rejected a step")

type FailureMode string

const (
	Abort  FailureMode = "abort"
	Replan FailureMode = "replan"
)

// Policy decides what happens when the server refuses part of a joint
// action.
type Policy struct {
	OnFailure  FailureMode
	MaxReplans int
}

const (
	EventStepRejected = "step_rejected"
	EventReplanned    = "replanned"
	EventFinished     = "session_finished"
	EventAborted      = "session_aborted"
)

type Result struct {
	RunIDs  []string
	Steps   int
	Replans int
	Solved  bool
}

// UseCase drives one client session: greet the server, read the level,
// solve it and stream the plan one joint action per line.
type UseCase struct {
	Channel ports.ServerChannel
	Solve   solve.UseCase
	Events  ports.SessionEventRepository
	Metrics ports.SolveMetrics
	Policy  Policy
	Name    string
	Log     hclog.Logger
	Now     func() time.Time
}

func (u UseCase) Run(ctx context.Context) (Result, error) {
	log := u.logger()
	var res Result
	if err := u.Channel.Hello(ctx, u.Name); err != nil {
		return res, fmt.Errorf("hello: %w", err)
	}
	text, err := u.Channel.ReadLevel(ctx)
	if err != nil {
		return res, err
	}
	lvl, err := levelparser.Parse(text)
	if err != nil {
		return res, fmt.Errorf("%w: %v", solve.ErrInvalidRequest, err)
	}
	state, err := lvl.State()
	if err != nil {
		return res, fmt.Errorf("%w: %v", solve.ErrInvalidRequest, err)
	}

	for {
		resp, err := u.Solve.Execute(ctx, solve.Request{LevelText: text})
		if resp.RunID != "" {
			res.RunIDs = append(res.RunIDs, resp.RunID)
		}
		if err != nil {
			return res, err
		}
		log.Info("streaming plan", "level", lvl.Name, "run_id", resp.RunID, "steps", len(resp.Joint))

		next, rejected, err := u.stream(ctx, resp, state, &res)
		if err != nil {
			return res, err
		}
		if !rejected {
			res.Solved = next.IsGoalState()
			u.record(ctx, resp.RunID, ports.SessionEvent{
				Type: EventFinished,
				Step: res.Steps,
				Payload: map[string]any{
					"solved":  res.Solved,
					"replans": res.Replans,
				},
			})
			return res, nil
		}

		if u.Policy.OnFailure != Replan || res.Replans >= u.Policy.MaxReplans {
			u.record(ctx, resp.RunID, ports.SessionEvent{Type: EventAborted, Step: res.Steps})
			return res, fmt.Errorf("%w at step %d", ErrRejected, res.Steps)
		}
		res.Replans++
		if u.Metrics != nil {
			u.Metrics.RecordReplan()
		}
		u.record(ctx, resp.RunID, ports.SessionEvent{
			Type:    EventReplanned,
			Step:    res.Steps,
			Payload: map[string]any{"replans": res.Replans},
		})
		log.Warn("replanning after rejection", "step", res.Steps, "replans", res.Replans)

		// The partial state becomes a fresh level so the new plan starts at
		// step zero.
		text = levelparser.Format(lvl.Domain, lvl.Name, next)
		again, err := levelparser.Parse(text)
		if err != nil {
			return res, err
		}
		if state, err = again.State(); err != nil {
			return res, err
		}
	}
}

// stream sends resp's plan step by step. It stops at the first joint
// action the server does not fully accept and returns the state that
// results from the accepted part.
func (u UseCase) stream(ctx context.Context, resp solve.Response, state *world.State, res *Result) (*world.State, bool, error) {
	for _, joint := range resp.Joint {
		ack, err := u.Channel.Send(ctx, joint)
		if err != nil {
			return state, false, fmt.Errorf("send step %d: %w", res.Steps, err)
		}
		if accepted(ack) {
			state = state.Apply(joint)
			res.Steps++
			continue
		}

		u.record(ctx, resp.RunID, ports.SessionEvent{
			Type: EventStepRejected,
			Step: res.Steps,
			Payload: map[string]any{
				"action": joint.String(),
				"ack":    ack,
			},
		})
		partial := joint.Clone()
		for i, ok := range ack {
			if !ok {
				partial[i] = grid.NoOpAction()
			}
		}
		next, err := state.TryApply(partial)
		if err != nil {
			return state, true, fmt.Errorf("%w: accepted part of step %d does not apply: %v", ErrRejected, res.Steps, err)
		}
		if !partial.IsNoOp() {
			res.Steps++
		}
		return next, true, nil
	}
	return state, false, nil
}

func (u UseCase) record(ctx context.Context, runID string, evt ports.SessionEvent) {
	if u.Events == nil || runID == "" {
		return
	}
	evt.OccurredAt = u.now()
	if err := u.Events.Append(ctx, runID, []ports.SessionEvent{evt}); err != nil {
		u.logger().Warn("record session event failed", "type", evt.Type, "error", err)
	}
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u UseCase) logger() hclog.Logger {
	if u.Log != nil {
		return u.Log.Named("session")
	}
	return hclog.NewNullLogger()
}

func accepted(ack []bool) bool {
	for _, ok := range ack {
		if !ok {
			return false
		}
	}
	return true
}
