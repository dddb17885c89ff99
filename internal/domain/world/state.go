package world

import (
	"sort"
	"strings"

	"gridplan/internal/domain/grid"
)

// State is an immutable snapshot of the level. Children share the wall
// set, color table and goal map with their parent and structurally share
// the box and agent maps.
type State struct {
	height    int
	width     int
	walls     *Walls
	colors    Colors
	goals     Objects
	boxes     Objects
	agents    Objects
	hidden    hiddenTable
	numAgents int

	parent  *State
	actions grid.JointAction
	g       int

	key string
}

func (s *State) Height() int                   { return s.height }
func (s *State) Width() int                    { return s.width }
func (s *State) NumAgents() int                { return s.numAgents }
func (s *State) Parent() *State                { return s.parent }
func (s *State) JointAction() grid.JointAction { return s.actions }
func (s *State) G() int                        { return s.g }
func (s *State) Walls() *Walls                 { return s.walls }
func (s *State) Colors() Colors                { return s.colors }
func (s *State) Goals() Objects                { return s.goals }
func (s *State) Boxes() Objects                { return s.boxes }
func (s *State) Agents() Objects               { return s.agents }

func (s *State) IsInitial() bool {
	return s.parent == nil
}

func (s *State) Color(r rune) string {
	return s.colors[r]
}

func (s *State) AgentColor(agent int) string {
	return s.colors[grid.AgentRune(agent)]
}

func (s *State) IsWall(p grid.Position) bool {
	return s.walls.Has(p)
}

func (s *State) BoxAt(p grid.Position) (rune, bool) {
	return s.boxes.Get(p)
}

func (s *State) AgentAt(p grid.Position) (rune, bool) {
	return s.agents.Get(p)
}

func (s *State) GoalAt(p grid.Position) (rune, bool) {
	return s.goals.Get(p)
}

// Occupant returns the visible agent or box at p.
func (s *State) Occupant(p grid.Position) (rune, bool) {
	if r, ok := s.agents.Get(p); ok {
		return r, true
	}
	return s.boxes.Get(p)
}

func (s *State) Occupied(p grid.Position) bool {
	_, ok := s.Occupant(p)
	return ok
}

func (s *State) IsFree(p grid.Position) bool {
	return !s.walls.Has(p) && !s.Occupied(p)
}

// HiddenAt reports the objects displaced beneath the visible occupant of p.
func (s *State) HiddenAt(p grid.Position) []rune {
	return s.hidden[p]
}

func (s *State) HasHidden() bool {
	return len(s.hidden) > 0
}

func (s *State) AgentPosition(agent int) (grid.Position, bool) {
	return s.agents.Find(grid.AgentRune(agent))
}

// AgentIDs returns the agents present in this state in ascending order.
func (s *State) AgentIDs() []int {
	out := make([]int, 0, s.agents.Len())
	s.agents.Each(func(_ grid.Position, r rune) bool {
		out = append(out, grid.AgentIndex(r))
		return true
	})
	sort.Ints(out)
	return out
}

func (s *State) AgentsOfColor(color string) []int {
	out := []int{}
	for _, id := range s.AgentIDs() {
		if s.AgentColor(id) == color {
			out = append(out, id)
		}
	}
	return out
}

// HasAgentOfColor reports whether any agent in the state can move boxes
// of the given color.
func (s *State) HasAgentOfColor(color string) bool {
	found := false
	s.agents.Each(func(_ grid.Position, r rune) bool {
		found = s.colors[r] == color
		return !found
	})
	return found
}

// Key identifies the cell configuration. Parent and cost are excluded so
// equal configurations reached along different paths collapse.
func (s *State) Key() string {
	if s.key != "" {
		return s.key
	}
	buf := make([]byte, 0, 8+5*(s.agents.Len()+s.boxes.Len()+s.goals.Len()))
	buf = append(buf, 'a')
	buf = s.agents.appendKey(buf)
	buf = append(buf, 'b')
	buf = s.boxes.appendKey(buf)
	buf = append(buf, 'g')
	buf = s.goals.appendKey(buf)
	if len(s.hidden) > 0 {
		buf = append(buf, 'h')
		buf = s.hidden.appendKey(buf)
	}
	s.key = string(buf)
	return s.key
}

func (s *State) Equal(o *State) bool {
	if s == o {
		return true
	}
	if o == nil {
		return false
	}
	return s.walls.Equal(o.walls) && s.Key() == o.Key()
}

// WithGoals returns a root state with the same cells and another goal map.
func (s *State) WithGoals(goals Objects) *State {
	out := s.root()
	out.goals = goals
	return out
}

// Restrict returns a root state keeping only the boxes, agents and goals
// for which keep reports true.
func (s *State) Restrict(keep func(grid.Position) bool) *State {
	out := s.root()
	out.boxes = filterObjects(s.boxes, keep)
	out.agents = filterObjects(s.agents, keep)
	out.goals = filterObjects(s.goals, keep)
	return out
}

// Wallify returns a root state where the boxes at positions become walls.
// Goals on those cells are dropped since nothing can change them.
func (s *State) Wallify(positions []grid.Position) *State {
	out := s.root()
	out.walls = s.walls.With(positions)
	for _, p := range positions {
		out.boxes = out.boxes.Delete(p)
		out.goals = out.goals.Delete(p)
	}
	return out
}

func (s *State) root() *State {
	return &State{
		height:    s.height,
		width:     s.width,
		walls:     s.walls,
		colors:    s.colors,
		goals:     s.goals,
		boxes:     s.boxes,
		agents:    s.agents,
		hidden:    s.hidden,
		numAgents: s.numAgents,
	}
}

func filterObjects(o Objects, keep func(grid.Position) bool) Objects {
	out := o
	o.Each(func(p grid.Position, _ rune) bool {
		if !keep(p) {
			out = out.Delete(p)
		}
		return true
	})
	return out
}

func (s *State) String() string {
	var b strings.Builder
	for r := 0; r < s.height; r++ {
		for c := 0; c < s.width; c++ {
			p := grid.Pos(r, c)
			if ch, ok := s.Occupant(p); ok {
				b.WriteRune(ch)
			} else if s.walls.Has(p) {
				b.WriteByte('+')
			} else if g, ok := s.goals.Get(p); ok {
				b.WriteString(strings.ToLower(string(g)))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
