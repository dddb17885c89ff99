package decompose

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"gridplan/internal/app/heuristic"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

const (
	openNeighborWeight = 10000
	agentGoalPenalty   = 100000
)

type scored struct {
	pos   grid.Position
	score int
}

// OrderGoals returns the goal cells of s in solving order. Open cells are
// peeled off lowest score first, where the score grows with the number of
// unsettled open neighbors, shrinks with the distance to the nearest
// agent, and is pushed far back for agent goals. Dead ends and corners
// therefore come first and agents park last.
func OrderGoals(s *world.State) []grid.Position {
	agentDist := heuristic.Flood(s, s.Agents().Positions())
	settled := map[grid.Position]bool{}
	score := func(p grid.Position) int {
		open := 0
		for _, n := range p.Neighbors() {
			if !s.IsWall(n) && !settled[n] {
				open++
			}
		}
		d, _ := agentDist.At(p)
		v := open*openNeighborWeight - d
		if g, ok := s.GoalAt(p); ok && grid.IsAgent(g) {
			v += agentGoalPenalty
		}
		return v
	}

	pq := priorityqueue.NewWith(func(a, b interface{}) int {
		x, y := a.(scored), b.(scored)
		if x.score != y.score {
			if x.score < y.score {
				return -1
			}
			return 1
		}
		return x.pos.Compare(y.pos)
	})
	current := map[grid.Position]int{}
	for r := 0; r < s.Height(); r++ {
		for c := 0; c < s.Width(); c++ {
			p := grid.Pos(r, c)
			if s.IsWall(p) {
				continue
			}
			current[p] = score(p)
			pq.Enqueue(scored{pos: p, score: current[p]})
		}
	}

	order := make([]grid.Position, 0, s.Goals().Len())
	for !pq.Empty() {
		v, _ := pq.Dequeue()
		it := v.(scored)
		if settled[it.pos] || current[it.pos] != it.score {
			continue
		}
		settled[it.pos] = true
		if _, ok := s.GoalAt(it.pos); ok {
			order = append(order, it.pos)
		}
		for _, n := range it.pos.Neighbors() {
			if s.IsWall(n) || settled[n] {
				continue
			}
			if sc := score(n); sc != current[n] {
				current[n] = sc
				pq.Enqueue(scored{pos: n, score: sc})
			}
		}
	}
	return order
}
