package heuristic

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// Options narrows what the heuristic tracks. An empty Color tracks every
// goal; Agent < 0 counts every agent of the tracked color; a non-nil
// Target tracks that single goal cell only.
type Options struct {
	Color  string
	Agent  int
	Target *grid.Position
}

func AllGoals() Options {
	return Options{Agent: -1}
}

type Heuristic struct {
	opts    Options
	fields  map[rune]Field
	byGoal  map[grid.Position]Field
	penalty int
	far     int
}

// New precomputes one distance field per goal type of s.
func New(s *world.State, opts Options) *Heuristic {
	sources := map[rune][]grid.Position{}
	s.Goals().Each(func(p grid.Position, g rune) bool {
		if opts.Target == nil || *opts.Target == p {
			sources[g] = append(sources[g], p)
		}
		return true
	})
	h := &Heuristic{
		opts:    opts,
		fields:  make(map[rune]Field, len(sources)),
		byGoal:  map[grid.Position]Field{},
		penalty: s.Height() + s.Width(),
		far:     s.Height() * s.Width(),
	}
	for g, ps := range sources {
		h.fields[g] = Flood(s, ps)
	}
	return h
}

func (h *Heuristic) tracks(s *world.State, r rune) bool {
	return h.opts.Color == "" || s.Color(r) == h.opts.Color
}

func (h *Heuristic) tracksGoal(s *world.State, p grid.Position, g rune) bool {
	if h.opts.Target != nil && *h.opts.Target != p {
		return false
	}
	return h.tracks(s, g)
}

// Distance is the open-cell distance from p to the nearest goal of type g.
func (h *Heuristic) Distance(g rune, p grid.Position) int {
	f, ok := h.fields[g]
	if !ok {
		return h.far
	}
	d, ok := f.At(p)
	if !ok {
		return h.far
	}
	return d
}

// H estimates the remaining work in s. It is zero whenever every tracked
// goal is satisfied.
func (h *Heuristic) H(s *world.State) int {
	unfilled := map[rune]int{}
	s.Goals().Each(func(p grid.Position, g rune) bool {
		if grid.IsBox(g) && h.tracksGoal(s, p, g) && !s.IsGoalSatisfied(p) {
			unfilled[g]++
		}
		return true
	})

	total := 0
	loose := map[rune][]grid.Position{}
	s.Boxes().Each(func(p grid.Position, b rune) bool {
		if unfilled[b] == 0 {
			return true
		}
		if g, ok := s.GoalAt(p); ok && g == b {
			return true
		}
		loose[b] = append(loose[b], p)
		return true
	})
	for g, n := range unfilled {
		total += h.closest(g, loose[g], n)
	}

	for _, id := range s.AgentIDs() {
		ar := grid.AgentRune(id)
		if h.opts.Agent >= 0 && id != h.opts.Agent {
			continue
		}
		if !h.tracks(s, ar) {
			continue
		}
		pos, _ := s.AgentPosition(id)
		if _, ok := h.fields[ar]; ok {
			total += h.Distance(ar, pos)
			continue
		}
		total += h.boxPenalty(s, pos, s.Color(ar), loose)
	}
	return total
}

// closest sums the n smallest distances of boxes to goals of type g,
// keeping a max-heap bounded to n entries.
func (h *Heuristic) closest(g rune, boxes []grid.Position, n int) int {
	pq := priorityqueue.NewWith(func(a, b interface{}) int {
		return b.(int) - a.(int)
	})
	for _, p := range boxes {
		pq.Enqueue(h.Distance(g, p))
		if pq.Size() > n {
			pq.Dequeue()
		}
	}
	sum := 0
	for _, v := range pq.Values() {
		sum += v.(int)
	}
	if missing := n - pq.Size(); missing > 0 {
		sum += missing * h.far
	}
	return sum
}

func (h *Heuristic) boxPenalty(s *world.State, pos grid.Position, color string, loose map[rune][]grid.Position) int {
	best := -1
	for b, ps := range loose {
		if s.Color(b) != color {
			continue
		}
		for _, p := range ps {
			if d := pos.Distance(p) - 1; best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	if best > h.penalty {
		return h.penalty
	}
	return best
}

// NearestBox picks the box of the goal's type closest to goalPos that
// agent can move and that is not already resting on its own goal. Ties
// go to the box nearer the agent, then to position order.
func (h *Heuristic) NearestBox(s *world.State, goalPos grid.Position, agent int) (grid.Position, bool) {
	g, ok := s.GoalAt(goalPos)
	if !ok || !grid.IsBox(g) {
		return grid.Position{}, false
	}
	if s.Color(g) != s.AgentColor(agent) {
		return grid.Position{}, false
	}
	field, ok := h.byGoal[goalPos]
	if !ok {
		field = Flood(s, []grid.Position{goalPos})
		h.byGoal[goalPos] = field
	}
	agentPos, _ := s.AgentPosition(agent)
	var (
		best      grid.Position
		bestDist  int
		bestAgent int
		found     bool
	)
	s.Boxes().Each(func(p grid.Position, b rune) bool {
		if b != g {
			return true
		}
		if p != goalPos && s.IsGoalSatisfied(p) {
			return true
		}
		d, ok := field.At(p)
		if !ok {
			return true
		}
		da := agentPos.Distance(p)
		if !found || d < bestDist || (d == bestDist && da < bestAgent) {
			best, bestDist, bestAgent, found = p, d, da, true
		}
		return true
	})
	return best, found
}
