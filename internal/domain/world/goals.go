package world

import "gridplan/internal/domain/grid"

// IsGoalSatisfied reports whether the goal at p holds a matching agent or
// box. Cells without a goal are never satisfied.
func (s *State) IsGoalSatisfied(p grid.Position) bool {
	g, ok := s.goals.Get(p)
	if !ok {
		return false
	}
	if grid.IsAgent(g) {
		r, ok := s.agents.Get(p)
		return ok && r == g
	}
	r, ok := s.boxes.Get(p)
	return ok && r == g
}

// GoalCount is the number of unsatisfied goals.
func (s *State) GoalCount() int {
	n := 0
	s.goals.Each(func(p grid.Position, _ rune) bool {
		if !s.IsGoalSatisfied(p) {
			n++
		}
		return true
	})
	return n
}

// GoalCountColor counts unsatisfied goals of one color group.
func (s *State) GoalCountColor(color string) int {
	n := 0
	s.goals.Each(func(p grid.Position, g rune) bool {
		if s.colors[g] == color && !s.IsGoalSatisfied(p) {
			n++
		}
		return true
	})
	return n
}

func (s *State) IsGoalState() bool {
	return s.GoalCount() == 0
}

// SatisfiedGoals returns the goals currently holding their object.
func (s *State) SatisfiedGoals() Objects {
	out := NewObjects()
	s.goals.Each(func(p grid.Position, g rune) bool {
		if s.IsGoalSatisfied(p) {
			out = out.Set(p, g)
		}
		return true
	})
	return out
}

// AgentAchievedGoal reports whether agent's last action turned an
// unsatisfied goal into a satisfied one, either under the agent or under
// the box it moved.
func (s *State) AgentAchievedGoal(agent int) bool {
	if s.parent == nil || agent >= len(s.actions) {
		return false
	}
	a := s.actions[agent]
	if a.IsNoOp() {
		return false
	}
	pos, ok := s.AgentPosition(agent)
	if !ok {
		return false
	}
	candidates := []grid.Position{pos}
	switch a.Kind {
	case grid.Push:
		candidates = append(candidates, pos.Add(a.BoxDir))
	case grid.Pull:
		if prev, ok := s.parent.AgentPosition(agent); ok {
			candidates = append(candidates, prev)
		}
	}
	for _, p := range candidates {
		if s.IsGoalSatisfied(p) && !s.parent.IsGoalSatisfied(p) {
			return true
		}
	}
	return false
}
