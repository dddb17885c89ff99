package world

import "gridplan/internal/domain/grid"

// Walls is the immutable wall set of a level. Cells outside the grid
// count as walls.
type Walls struct {
	height int
	width  int
	cells  []bool
}

func NewWalls(height, width int, positions []grid.Position) *Walls {
	w := &Walls{height: height, width: width, cells: make([]bool, height*width)}
	for _, p := range positions {
		if w.inside(p) {
			w.cells[p.Row*width+p.Col] = true
		}
	}
	return w
}

func (w *Walls) inside(p grid.Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < w.height && p.Col < w.width
}

func (w *Walls) Has(p grid.Position) bool {
	if !w.inside(p) {
		return true
	}
	return w.cells[p.Row*w.width+p.Col]
}

// With returns a copy that additionally walls off positions.
func (w *Walls) With(positions []grid.Position) *Walls {
	out := &Walls{height: w.height, width: w.width, cells: make([]bool, len(w.cells))}
	copy(out.cells, w.cells)
	for _, p := range positions {
		if out.inside(p) {
			out.cells[p.Row*out.width+p.Col] = true
		}
	}
	return out
}

func (w *Walls) Equal(o *Walls) bool {
	if w == o {
		return true
	}
	if w == nil || o == nil || w.height != o.height || w.width != o.width {
		return false
	}
	for i := range w.cells {
		if w.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (w *Walls) Count() int {
	n := 0
	for _, c := range w.cells {
		if c {
			n++
		}
	}
	return n
}
