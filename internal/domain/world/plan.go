package world

import (
	"fmt"

	"gridplan/internal/domain/grid"
)

// Plan is a timeline of states: index 0 is a root and every later state
// is the child of the one before it.
type Plan []*State

func (p Plan) Last() *State {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Actions returns the joint actions between consecutive states.
func (p Plan) Actions() []grid.JointAction {
	if len(p) < 2 {
		return nil
	}
	out := make([]grid.JointAction, 0, len(p)-1)
	for _, s := range p[1:] {
		out = append(out, s.actions)
	}
	return out
}

// Clone returns a copy of the timeline slice; states are shared.
func (p Plan) Clone() Plan {
	return append(Plan(nil), p...)
}

// WithGoals re-applies the timeline on a root carrying goals instead of
// the original goal map.
func (p Plan) WithGoals(goals Objects) Plan {
	if len(p) == 0 {
		return nil
	}
	out := make(Plan, 0, len(p))
	cur := p[0].WithGoals(goals)
	out = append(out, cur)
	for _, s := range p[1:] {
		cur = cur.Apply(s.actions)
		out = append(out, cur)
	}
	return out
}

// ExtractPlan walks parent links back to the root.
func (s *State) ExtractPlan() Plan {
	n := 0
	for cur := s; cur != nil; cur = cur.parent {
		n++
	}
	out := make(Plan, n)
	for cur := s; cur != nil; cur = cur.parent {
		n--
		out[n] = cur
	}
	return out
}

// Replay applies actions from root and fails on the first inapplicable
// step.
func Replay(root *State, actions []grid.JointAction) (Plan, error) {
	out := make(Plan, 0, len(actions)+1)
	out = append(out, root)
	cur := root
	for i, joint := range actions {
		next, err := cur.TryApply(joint)
		if err != nil {
			return out, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}
