package heuristic

import (
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

const unreachable = -1

// Field holds breadth-first distances over open cells to the nearest of
// a set of sources. Walls block propagation; boxes and agents do not.
type Field struct {
	width int
	dist  []int
}

func Flood(s *world.State, sources []grid.Position) Field {
	f := Field{width: s.Width(), dist: make([]int, s.Height()*s.Width())}
	for i := range f.dist {
		f.dist[i] = unreachable
	}
	queue := make([]grid.Position, 0, len(sources))
	for _, p := range sources {
		if s.IsWall(p) || f.dist[f.index(p)] == 0 {
			continue
		}
		f.dist[f.index(p)] = 0
		queue = append(queue, p)
	}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		d := f.dist[f.index(cur)]
		for _, n := range cur.Neighbors() {
			if s.IsWall(n) || f.dist[f.index(n)] != unreachable {
				continue
			}
			f.dist[f.index(n)] = d + 1
			queue = append(queue, n)
		}
	}
	return f
}

func (f Field) index(p grid.Position) int {
	return p.Row*f.width + p.Col
}

// At returns the distance at p and whether p is reachable.
func (f Field) At(p grid.Position) (int, bool) {
	if p.Row < 0 || p.Col < 0 || p.Col >= f.width || f.index(p) >= len(f.dist) {
		return 0, false
	}
	d := f.dist[f.index(p)]
	return d, d != unreachable
}
