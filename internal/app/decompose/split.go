package decompose

import (
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// SplitLevel partitions s into independently solvable sub-levels, one per
// wall-enclosed region holding at least one goal. Boxes no agent can move
// are turned into walls first, which may cut regions further apart.
func SplitLevel(s *world.State) []*world.State {
	s = Wallify(s)
	assigned := map[grid.Position]bool{}
	var subs []*world.State
	s.Goals().Each(func(p grid.Position, _ rune) bool {
		if assigned[p] {
			return true
		}
		region := Region(s, p)
		for q := range region {
			if _, ok := s.GoalAt(q); ok {
				assigned[q] = true
			}
		}
		subs = append(subs, s.Restrict(func(q grid.Position) bool { return region[q] }))
		return true
	})
	if len(subs) <= 1 {
		return subs
	}
	out := make([]*world.State, 0, len(subs))
	for _, sub := range subs {
		out = append(out, SplitLevel(sub)...)
	}
	return out
}

// Wallify turns every box without an agent of its color into a wall.
func Wallify(s *world.State) *world.State {
	var stuck []grid.Position
	s.Boxes().Each(func(p grid.Position, b rune) bool {
		if !s.HasAgentOfColor(s.Color(b)) {
			stuck = append(stuck, p)
		}
		return true
	})
	if len(stuck) == 0 {
		return s
	}
	return s.Wallify(stuck)
}

// Region is the 4-connected set of open cells reachable from p.
func Region(s *world.State, p grid.Position) map[grid.Position]bool {
	seen := map[grid.Position]bool{p: true}
	queue := []grid.Position{p}
	for head := 0; head < len(queue); head++ {
		for _, n := range queue[head].Neighbors() {
			if seen[n] || s.IsWall(n) {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}
