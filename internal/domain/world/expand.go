package world

import (
	"math/rand"

	"gridplan/internal/domain/grid"
)

// committed returns the joint action that produced next from s, or all
// NoOps when nothing is committed.
func (s *State) committed(next *State) grid.JointAction {
	if next == nil || len(next.actions) != s.numAgents {
		return grid.NoOps(s.numAgents)
	}
	return next.actions
}

// Expand returns the successors of s in which agent tries every action and
// all other agents follow the joint action that produced next. An action
// is kept only if its preconditions hold against both s and next. The
// agent's own slot in next must be a NoOp. next may be nil.
func (s *State) Expand(agent int, next *State, rng *rand.Rand) []*State {
	committed := s.committed(next)
	out := make([]*State, 0, 8)
	for _, a := range grid.AllActions() {
		if next != nil {
			if _, err := next.effectOf(agent, a); err != nil {
				continue
			}
		}
		child, err := s.TryApply(committed.With(agent, a))
		if err != nil {
			continue
		}
		out = append(out, child)
	}
	if child, err := s.TryApply(committed.With(agent, grid.NoOpAction())); err == nil {
		out = append(out, child)
	}
	shuffle(rng, out)
	return out
}

// ExpandIgnoringOthers is Expand with relaxed occupancy: the agent may step
// onto cells holding other agents or boxes. Whatever it steps on is kept
// in the hidden table and reappears when the agent moves on. Boxes the
// agent pushes or pulls still need free destinations.
func (s *State) ExpandIgnoringOthers(agent int, next *State, rng *rand.Rand) []*State {
	pos, ok := s.AgentPosition(agent)
	if !ok {
		return nil
	}
	committed := s.committed(next)
	base := committed.With(agent, grid.NoOpAction())
	effs, err := s.effects(base)
	if err != nil {
		return nil
	}
	if next == nil {
		next = s
	}
	color := s.AgentColor(agent)
	ownBox := func(st *State, p grid.Position) (rune, bool) {
		r, ok := st.BoxAt(p)
		return r, ok && st.colors[r] == color
	}
	ar := grid.AgentRune(agent)
	out := make([]*State, 0, 8)
	for _, a := range grid.AllActions() {
		c := s.cells()
		applyEffects(c, effs)
		switch a.Kind {
		case grid.Move:
			to := pos.Add(a.AgentDir)
			if s.walls.Has(to) {
				continue
			}
			c.remove(pos)
			c.place(to, ar)
		case grid.Push:
			boxFrom := pos.Add(a.AgentDir)
			box, ok := ownBox(s, boxFrom)
			if !ok {
				continue
			}
			if r, ok := ownBox(next, boxFrom); !ok || r != box {
				continue
			}
			boxTo := boxFrom.Add(a.BoxDir)
			if !s.IsFree(boxTo) || !next.IsFree(boxTo) {
				continue
			}
			c.remove(boxFrom)
			c.place(boxTo, box)
			c.remove(pos)
			c.place(boxFrom, ar)
		case grid.Pull:
			to := pos.Add(a.AgentDir)
			if s.walls.Has(to) || len(s.hidden[pos]) > 0 {
				continue
			}
			boxFrom := pos.Add(a.BoxDir)
			box, ok := ownBox(s, boxFrom)
			if !ok {
				continue
			}
			if r, ok := ownBox(next, boxFrom); !ok || r != box {
				continue
			}
			c.remove(pos)
			c.place(to, ar)
			c.remove(boxFrom)
			c.place(pos, box)
		}
		out = append(out, s.child(committed.With(agent, a), c))
	}
	c := s.cells()
	applyEffects(c, effs)
	out = append(out, s.child(base, c))
	shuffle(rng, out)
	return out
}

// ApplyIgnoring replays a single action for agent while everyone else
// idles, walking over anything in the way. A Push or Pull whose box is
// no longer where the action expects it only moves the agent.
func (s *State) ApplyIgnoring(agent int, a grid.Action) *State {
	pos, ok := s.AgentPosition(agent)
	if !ok {
		return s
	}
	ar := grid.AgentRune(agent)
	c := s.cells()
	switch a.Kind {
	case grid.Move:
		c.remove(pos)
		c.place(pos.Add(a.AgentDir), ar)
	case grid.Push:
		boxFrom := pos.Add(a.AgentDir)
		if box, ok := c.boxes.Get(boxFrom); ok {
			c.remove(boxFrom)
			c.place(boxFrom.Add(a.BoxDir), box)
		}
		c.remove(pos)
		c.place(boxFrom, ar)
	case grid.Pull:
		boxFrom := pos.Add(a.BoxDir)
		c.remove(pos)
		c.place(pos.Add(a.AgentDir), ar)
		if box, ok := c.boxes.Get(boxFrom); ok {
			c.remove(boxFrom)
			c.place(pos, box)
		}
	}
	return s.child(grid.NoOps(s.numAgents).With(agent, a), c)
}

func applyEffects(c *cells, effs []effect) {
	for _, e := range effs {
		c.remove(e.from)
		if e.movesBox {
			c.remove(e.boxFrom)
		}
	}
	for _, e := range effs {
		c.place(e.to, e.agentRun)
		if e.movesBox {
			c.place(e.boxTo, e.box)
		}
	}
}

func shuffle(rng *rand.Rand, states []*State) {
	if rng == nil {
		return
	}
	rng.Shuffle(len(states), func(i, j int) {
		states[i], states[j] = states[j], states[i]
	})
}
