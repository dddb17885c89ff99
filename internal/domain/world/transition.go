package world

import (
	"errors"
	"fmt"

	"gridplan/internal/domain/grid"
)

var ErrInapplicable = errors.New("inapplicable joint action")

type InapplicableError struct {
	Agent  int
	Action grid.Action
	Reason string
}

func (e *InapplicableError) Error() string {
	if e.Agent < 0 {
		return fmt.Sprintf("%s: %s", ErrInapplicable, e.Reason)
	}
	return fmt.Sprintf("%s: agent %d %s: %s", ErrInapplicable, e.Agent, e.Action, e.Reason)
}

func (e *InapplicableError) Unwrap() error {
	return ErrInapplicable
}

// effect is the cell-level outcome of one agent's action.
type effect struct {
	agent    int
	agentRun rune
	from     grid.Position
	to       grid.Position
	box      rune
	boxFrom  grid.Position
	boxTo    grid.Position
	movesBox bool
}

func (s *State) effectOf(agent int, a grid.Action) (effect, error) {
	fail := func(reason string) (effect, error) {
		return effect{}, &InapplicableError{Agent: agent, Action: a, Reason: reason}
	}
	pos, ok := s.AgentPosition(agent)
	if !ok {
		return fail("agent not in level")
	}
	e := effect{agent: agent, agentRun: grid.AgentRune(agent), from: pos}
	color := s.AgentColor(agent)
	switch a.Kind {
	case grid.Move:
		e.to = pos.Add(a.AgentDir)
		if !s.IsFree(e.to) {
			return fail("destination not free")
		}
	case grid.Push:
		e.to = pos.Add(a.AgentDir)
		box, ok := s.BoxAt(e.to)
		if !ok || s.colors[box] != color {
			return fail("no movable box ahead")
		}
		e.box, e.boxFrom, e.boxTo, e.movesBox = box, e.to, e.to.Add(a.BoxDir), true
		if !s.IsFree(e.boxTo) {
			return fail("box destination not free")
		}
	case grid.Pull:
		e.to = pos.Add(a.AgentDir)
		if !s.IsFree(e.to) {
			return fail("destination not free")
		}
		boxFrom := pos.Add(a.BoxDir)
		box, ok := s.BoxAt(boxFrom)
		if !ok || s.colors[box] != color {
			return fail("no movable box behind")
		}
		e.box, e.boxFrom, e.boxTo, e.movesBox = box, boxFrom, pos, true
	default:
		e.to = pos
	}
	return e, nil
}

// claimed is the cell an action newly occupies; no two actions in one
// step may claim the same cell.
func (e effect) claimed() grid.Position {
	if e.movesBox && e.boxTo != e.from {
		return e.boxTo
	}
	return e.to
}

func (s *State) effects(joint grid.JointAction) ([]effect, error) {
	if len(joint) != s.numAgents {
		return nil, &InapplicableError{Agent: -1, Reason: fmt.Sprintf("joint action has %d actions for %d agents", len(joint), s.numAgents)}
	}
	out := make([]effect, 0, len(joint))
	for agent, a := range joint {
		if a.IsNoOp() {
			continue
		}
		e, err := s.effectOf(agent, a)
		if err != nil {
			return nil, err
		}
		for _, prev := range out {
			if prev.claimed() == e.claimed() {
				return nil, &InapplicableError{Agent: agent, Action: a, Reason: fmt.Sprintf("conflicts with agent %d over %v", prev.agent, e.claimed())}
			}
			if prev.movesBox && e.movesBox && prev.boxFrom == e.boxFrom {
				return nil, &InapplicableError{Agent: agent, Action: a, Reason: fmt.Sprintf("box at %v also moved by agent %d", e.boxFrom, prev.agent)}
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *State) Applicable(joint grid.JointAction) bool {
	_, err := s.effects(joint)
	return err == nil
}

// TryApply returns the successor of s under joint, or an
// *InapplicableError when a precondition does not hold.
func (s *State) TryApply(joint grid.JointAction) (*State, error) {
	effs, err := s.effects(joint)
	if err != nil {
		return nil, err
	}
	c := s.cells()
	applyEffects(c, effs)
	return s.child(joint, c), nil
}

// Apply is TryApply for joint actions the caller already knows to be
// applicable. An inapplicable joint action means the plan bookkeeping is
// broken, so it panics.
func (s *State) Apply(joint grid.JointAction) *State {
	next, err := s.TryApply(joint)
	if err != nil {
		panic(err)
	}
	return next
}

func (s *State) child(joint grid.JointAction, c *cells) *State {
	return &State{
		height:    s.height,
		width:     s.width,
		walls:     s.walls,
		colors:    s.colors,
		goals:     s.goals,
		boxes:     c.boxes,
		agents:    c.agents,
		hidden:    c.hidden,
		numAgents: s.numAgents,
		parent:    s,
		actions:   joint,
		g:         s.g + 1,
	}
}
