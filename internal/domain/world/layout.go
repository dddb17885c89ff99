package world

import (
	"errors"
	"fmt"

	"gridplan/internal/domain/grid"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Colors maps agent digits and box letters to their color group.
type Colors map[rune]string

type Layout struct {
	Height int
	Width  int
	Walls  []grid.Position
	Boxes  map[grid.Position]rune
	Agents map[grid.Position]rune
	Goals  map[grid.Position]rune
	Colors Colors
}

// LayoutFromRows reads aligned initial and goal grids: '+' is a wall,
// digits are agents, capital letters are boxes (or goals in the goal
// grid) and anything else in the goal grid is ignored. Rows are padded
// to the widest one.
func LayoutFromRows(initial, goal []string, colors Colors) (Layout, error) {
	width := 0
	for _, row := range append(append([]string{}, initial...), goal...) {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}
	l := Layout{
		Height: len(initial),
		Width:  width,
		Boxes:  map[grid.Position]rune{},
		Agents: map[grid.Position]rune{},
		Goals:  map[grid.Position]rune{},
		Colors: colors,
	}
	if l.Colors == nil {
		l.Colors = Colors{}
	}
	for r, row := range initial {
		for c, ch := range []rune(row) {
			p := grid.Pos(r, c)
			switch {
			case ch == '+':
				l.Walls = append(l.Walls, p)
			case grid.IsAgent(ch):
				l.Agents[p] = ch
			case grid.IsBox(ch):
				l.Boxes[p] = ch
			case ch == ' ':
			default:
				return Layout{}, fmt.Errorf("%w: unexpected %q at %v", ErrInvalidLayout, ch, p)
			}
		}
	}
	if len(goal) > len(initial) {
		l.Height = len(goal)
	}
	for r, row := range goal {
		for c, ch := range []rune(row) {
			if grid.IsAgent(ch) || grid.IsBox(ch) {
				l.Goals[grid.Pos(r, c)] = ch
			}
		}
	}
	return l, nil
}

// MustLayout is LayoutFromRows for fixtures that are known to be valid.
func MustLayout(initial, goal []string, colors Colors) Layout {
	l, err := LayoutFromRows(initial, goal, colors)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Layout) String() string {
	return fmt.Sprintf("%dx%d agents=%d boxes=%d goals=%d", l.Height, l.Width, len(l.Agents), len(l.Boxes), len(l.Goals))
}

// NewState validates l and builds the root state of a level.
func NewState(l Layout) (*State, error) {
	walls := NewWalls(l.Height, l.Width, l.Walls)
	seenAgent := map[rune]bool{}
	numAgents := 0
	for p, r := range l.Agents {
		if !grid.IsAgent(r) {
			return nil, fmt.Errorf("%w: %q is not an agent", ErrInvalidLayout, r)
		}
		if walls.Has(p) {
			return nil, fmt.Errorf("%w: agent %c on wall %v", ErrInvalidLayout, r, p)
		}
		if seenAgent[r] {
			return nil, fmt.Errorf("%w: duplicate agent %c", ErrInvalidLayout, r)
		}
		seenAgent[r] = true
		if _, ok := l.Colors[r]; !ok {
			return nil, fmt.Errorf("%w: agent %c has no color", ErrInvalidLayout, r)
		}
		if i := grid.AgentIndex(r) + 1; i > numAgents {
			numAgents = i
		}
	}
	for p, r := range l.Boxes {
		if !grid.IsBox(r) {
			return nil, fmt.Errorf("%w: %q is not a box", ErrInvalidLayout, r)
		}
		if walls.Has(p) {
			return nil, fmt.Errorf("%w: box %c on wall %v", ErrInvalidLayout, r, p)
		}
		if _, ok := l.Agents[p]; ok {
			return nil, fmt.Errorf("%w: box %c and an agent share %v", ErrInvalidLayout, r, p)
		}
		if _, ok := l.Colors[r]; !ok {
			return nil, fmt.Errorf("%w: box %c has no color", ErrInvalidLayout, r)
		}
	}
	for p, r := range l.Goals {
		if walls.Has(p) {
			return nil, fmt.Errorf("%w: goal %c on wall %v", ErrInvalidLayout, r, p)
		}
	}
	colors := make(Colors, len(l.Colors))
	for k, v := range l.Colors {
		colors[k] = v
	}
	return &State{
		height:    l.Height,
		width:     l.Width,
		walls:     walls,
		colors:    colors,
		goals:     ObjectsOf(l.Goals),
		boxes:     ObjectsOf(l.Boxes),
		agents:    ObjectsOf(l.Agents),
		numAgents: numAgents,
	}, nil
}

// MustState builds a root state from rows and panics on invalid input.
func MustState(initial, goal []string, colors Colors) *State {
	s, err := NewState(MustLayout(initial, goal, colors))
	if err != nil {
		panic(err)
	}
	return s
}
