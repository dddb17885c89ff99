package agent

import (
	"fmt"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// SolveConflicts weaves agent's actions into committed, starting after
// the agent's last committed action. At every step the agent either acts
// together with the commitments or waits for them. When a commitment
// becomes impossible because of the agent, the whole weave is retried
// with one more leading NoOp.
func SolveConflicts(committed world.Plan, agent int, actions []grid.Action) (world.Plan, error) {
	if len(committed) == 0 {
		return nil, fmt.Errorf("%w: empty timeline", ErrNoPlan)
	}
	start := PlanToActions(committed)[agent]
	maxDelay := len(committed) - start
	for delay := 0; delay <= maxDelay; delay++ {
		if merged, ok := weave(committed, start, agent, actions, delay); ok {
			return merged, nil
		}
	}
	return nil, fmt.Errorf("%w: agent %d cannot be woven into the committed plan", ErrNoPlan, agent)
}

func weave(committed world.Plan, start, agent int, actions []grid.Action, delay int) (world.Plan, bool) {
	queue := make([]grid.Action, 0, delay+len(actions))
	for i := 0; i < delay; i++ {
		queue = append(queue, grid.NoOpAction())
	}
	queue = append(queue, actions...)

	merged := committed[:start+1].Clone()
	i, n := start+1, 0
	for n < len(queue) || i < len(committed) {
		cur := merged.Last()
		base := grid.NoOps(cur.NumAgents())
		if i < len(committed) {
			base = committed[i].JointAction()
		}
		if n < len(queue) {
			if next, err := cur.TryApply(base.With(agent, queue[n])); err == nil {
				merged = append(merged, next)
				n++
				i++
				continue
			}
			if i >= len(committed) {
				return nil, false
			}
		}
		next, err := cur.TryApply(base)
		if err != nil {
			return nil, false
		}
		merged = append(merged, next)
		i++
	}
	return merged, true
}

// ExtendSolution weaves the actions agent performs in fresh, after its
// last committed action, into committed.
func ExtendSolution(committed, fresh world.Plan, agent int) (world.Plan, error) {
	start := PlanToActions(committed)[agent]
	return SolveConflicts(committed, agent, agentActions(fresh, agent, start))
}
