package agent

import (
	"fmt"

	"gridplan/internal/app/strategy"
	"gridplan/internal/domain/world"
)

// Search looks for the shortest way for agent to satisfy one more goal
// while every other agent keeps to planned. It returns the whole merged
// timeline: the path to the goal followed by the replayed commitments.
func (p *Planner) Search(agent int, planned world.Plan, strat strategy.Strategy) (world.Plan, error) {
	if len(planned) == 0 {
		return nil, fmt.Errorf("%w: empty timeline", ErrNoPlan)
	}
	start := planned[PlanToActions(planned)[agent]]
	target := planned.Last().GoalCount()
	strat.AddToFrontier(start)
	for {
		if err := p.interrupted(); err != nil {
			p.finish(strat, agent, false)
			return nil, err
		}
		if strat.FrontierIsEmpty() || p.exhausted(strat) {
			p.finish(strat, agent, false)
			return nil, fmt.Errorf("agent %d: %w", agent, ErrNoPlan)
		}
		leaf := strat.GetAndRemoveLeaf()
		if leaf.G() > start.G() && leaf.AgentAchievedGoal(agent) {
			if rest, ok := replaySuffix(leaf, planned, agent); ok {
				end := leaf
				if len(rest) > 0 {
					end = rest.Last()
				}
				if end.GoalCount() < target {
					p.finish(strat, agent, true)
					return append(leaf.ExtractPlan(), rest...), nil
				}
			}
		}
		strat.AddToExplored(leaf)
		next, ok := committedNext(leaf, planned, agent)
		if !ok {
			continue
		}
		for _, child := range leaf.Expand(agent, next, p.rng) {
			if !strat.IsExplored(child) && !strat.InFrontier(child) {
				strat.AddToFrontier(child)
			}
		}
	}
}

// SASearch solves a level holding a single agent outright.
func (p *Planner) SASearch(root *world.State, strat strategy.Strategy) (world.Plan, error) {
	ids := root.AgentIDs()
	if len(ids) != 1 {
		return nil, fmt.Errorf("%w: single-agent search over %d agents", ErrNoPlan, len(ids))
	}
	agent := ids[0]
	strat.AddToFrontier(root)
	for {
		if err := p.interrupted(); err != nil {
			p.finish(strat, agent, false)
			return nil, err
		}
		if strat.FrontierIsEmpty() || p.exhausted(strat) {
			p.finish(strat, agent, false)
			return nil, fmt.Errorf("agent %d: %w", agent, ErrNoPlan)
		}
		leaf := strat.GetAndRemoveLeaf()
		if leaf.IsGoalState() {
			p.finish(strat, agent, true)
			return leaf.ExtractPlan(), nil
		}
		strat.AddToExplored(leaf)
		for _, child := range leaf.Expand(agent, nil, p.rng) {
			if !strat.IsExplored(child) && !strat.InFrontier(child) {
				strat.AddToFrontier(child)
			}
		}
	}
}
