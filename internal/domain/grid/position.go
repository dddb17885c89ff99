package grid

import "fmt"

type Position struct {
	Row int
	Col int
}

func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) Add(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Distance is the Manhattan distance between p and o.
func (p Position) Distance(o Position) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

// Compare orders positions by row, then column.
func (p Position) Compare(o Position) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Col < o.Col:
		return -1
	case p.Col > o.Col:
		return 1
	default:
		return 0
	}
}

func (p Position) Less(o Position) bool {
	return p.Compare(o) < 0
}

func (p Position) Neighbors() [4]Position {
	var out [4]Position
	for i, d := range Directions {
		out[i] = p.Add(d)
	}
	return out
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
