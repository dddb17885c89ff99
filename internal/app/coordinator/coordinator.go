package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"gridplan/internal/app/agent"
	"gridplan/internal/app/decompose"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

var (
	ErrUnsolvable  = errors.New("level cannot be solved")
	ErrInvalidPlan = errors.New("merged plan does not replay")
)

type SubLevel struct {
	Agents int
	Goals  int
	Steps  int
}

type Result struct {
	Actions   []grid.JointAction
	Plan      world.Plan
	SubLevels []SubLevel
	Explored  int
	Generated int
	Helpers   int
	Elapsed   time.Duration
}

// Coordinator turns single-agent searches into a joint plan. Each call to
// Solve or MASolveIgnore gets its own planner, so equal inputs and seeds
// give equal plans.
type Coordinator struct {
	cfg agent.Config
	log hclog.Logger
}

func New(cfg agent.Config, logger hclog.Logger) *Coordinator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Coordinator{cfg: cfg, log: logger.Named("coordinator")}
}

// Solve splits root into independent sub-levels, solves each one and
// merges the plans. The merged plan is replayed against root before it is
// returned.
func (c *Coordinator) Solve(ctx context.Context, root *world.State) (Result, error) {
	started := time.Now()
	p := agent.NewPlanner(c.cfg, c.log).WithContext(ctx)
	subs := decompose.SplitLevel(root)
	c.log.Info("level split", "sub_levels", len(subs), "agents", root.NumAgents(), "goals", root.Goals().Len())

	var res Result
	var merged []grid.JointAction
	for i, sub := range subs {
		plan, err := c.solveSub(ctx, p, sub)
		if err != nil {
			return res, fmt.Errorf("sub-level %d: %w", i, err)
		}
		res.SubLevels = append(res.SubLevels, SubLevel{
			Agents: len(sub.AgentIDs()),
			Goals:  sub.Goals().Len(),
			Steps:  len(plan) - 1,
		})
		merged = MergeSolutions(merged, plan.Actions())
	}

	final, err := world.Replay(root, merged)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if !final.Last().IsGoalState() {
		return res, fmt.Errorf("%w: %d goals left after merge", ErrUnsolvable, final.Last().GoalCount())
	}
	stats := p.Stats()
	res.Actions = merged
	res.Plan = final
	res.Explored = stats.Explored
	res.Generated = stats.Generated
	res.Helpers = stats.Helpers
	res.Elapsed = time.Since(started)
	c.log.Info("level solved", "steps", len(merged), "explored", res.Explored, "elapsed", res.Elapsed)
	return res, nil
}

func (c *Coordinator) solveSub(ctx context.Context, p *agent.Planner, sub *world.State) (world.Plan, error) {
	plan, err := c.maSolve(ctx, p, sub)
	if err == nil || ctx.Err() != nil {
		return plan, err
	}
	ids := sub.AgentIDs()
	if len(ids) != 1 {
		return nil, err
	}
	c.log.Warn("falling back to single-agent search", "agent", ids[0], "error", err)
	return p.SASearch(sub, p.NewStrategy(sub, ids[0], nil))
}

// MASolveIgnore solves initial goal by goal, following OrderGoals. For
// each goal every compatible agent gets a conflict-tolerant search and the
// shortest resulting timeline wins.
func (c *Coordinator) MASolveIgnore(ctx context.Context, initial *world.State) (world.Plan, error) {
	return c.maSolve(ctx, agent.NewPlanner(c.cfg, c.log).WithContext(ctx), initial)
}

func (c *Coordinator) maSolve(ctx context.Context, p *agent.Planner, initial *world.State) (world.Plan, error) {
	plan := world.Plan{initial}
	order := decompose.OrderGoals(initial)
	for plan.Last().GoalCount() > 0 {
		if err := ctx.Err(); err != nil {
			return plan, err
		}
		next, err := c.nextGoal(ctx, p, plan, order)
		if err != nil {
			return plan, err
		}
		plan = next
	}
	return plan, nil
}

// nextGoal satisfies the first goal, in order, that some agent can reach
// without undoing more than it achieves.
func (c *Coordinator) nextGoal(ctx context.Context, p *agent.Planner, plan world.Plan, order []grid.Position) (world.Plan, error) {
	last := plan.Last()
	before := last.GoalCount()
	var lastErr error
	for _, goalPos := range order {
		if last.IsGoalSatisfied(goalPos) {
			continue
		}
		g, _ := last.GoalAt(goalPos)
		var best world.Plan
		for _, a := range candidates(last, g) {
			performed := agent.PlanToActions(plan)
			target := goalPos
			strat := p.NewStrategy(plan[performed[a]], a, &target)
			sol, err := p.SearchIgnore(a, plan, strat, goalPos, performed, nil)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err != nil {
				lastErr = err
				continue
			}
			if sol.Last().GoalCount() >= before {
				continue
			}
			if best == nil || len(sol) < len(best) {
				best = sol
			}
		}
		if best != nil {
			c.log.Info("goal assigned", "goal", string(g), "at", goalPos.String(), "steps", len(best)-1, "left", best.Last().GoalCount())
			return best, nil
		}
		c.log.Debug("goal postponed", "goal", string(g), "at", goalPos.String())
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %d goals left: %v", ErrUnsolvable, before, lastErr)
	}
	return nil, fmt.Errorf("%w: %d goals left", ErrUnsolvable, before)
}

func candidates(s *world.State, goal rune) []int {
	if grid.IsAgent(goal) {
		id := grid.AgentIndex(goal)
		if _, ok := s.AgentPosition(id); ok {
			return []int{id}
		}
		return nil
	}
	return s.AgentsOfColor(s.Color(goal))
}

// MergeSolutions overlays b onto a step by step, whatever their lengths;
// the shorter plan is padded with NoOps. Sub-level plans touch disjoint
// agents, so every non-NoOp action of b fills a NoOp slot of a and the
// overlay order does not matter. Were an agent shared, b's action would
// win.
func MergeSolutions(a, b []grid.JointAction) []grid.JointAction {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]grid.JointAction, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a):
			out = append(out, b[i].Clone())
		case i >= len(b):
			out = append(out, a[i].Clone())
		default:
			joint := a[i].Clone()
			for agent, act := range b[i] {
				if !act.IsNoOp() && agent < len(joint) {
					joint[agent] = act
				}
			}
			out = append(out, joint)
		}
	}
	return out
}
