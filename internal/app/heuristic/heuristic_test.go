package heuristic

import (
	"testing"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

var colors = world.Colors{'0': "red", '1': "blue", 'A': "red", 'B': "blue"}

func rowFixture() *world.State {
	return world.MustState(
		[]string{
			"++++++++++",
			"+0A  A  A+",
			"++++++++++",
		},
		[]string{
			"",
			"+     AA +",
		},
		colors,
	)
}

func TestHSumsClosestBoxesPerGoalType(t *testing.T) {
	s := rowFixture()
	h := New(s, AllGoals())
	if got := h.H(s); got != 2 {
		t.Fatalf("H()=%d want=2", got)
	}
}

func TestHIsZeroAtGoal(t *testing.T) {
	s := world.MustState(
		[]string{
			"++++++++++",
			"+0A   AA +",
			"++++++++++",
		},
		[]string{
			"",
			"+     AA +",
		},
		colors,
	)
	if !s.IsGoalState() {
		t.Fatalf("fixture should be solved")
	}
	if got := New(s, AllGoals()).H(s); got != 0 {
		t.Fatalf("H()=%d want=0", got)
	}
}

func TestHCountsAgentGoalDistance(t *testing.T) {
	s := world.MustState([]string{"+++++", "+0  +", "+++++"}, []string{"", "+  0+"}, colors)
	h := New(s, Options{Color: "red", Agent: 0})
	if got := h.H(s); got != 2 {
		t.Fatalf("H()=%d want=2", got)
	}
	if got := (AStar{H: h}).F(s); got != 2 {
		t.Fatalf("A* F()=%d want=2", got)
	}
	if got := (WeightedAStar{H: h, W: 3}).F(s); got != 6 {
		t.Fatalf("WA* F()=%d want=6", got)
	}
	next := s.Apply(grid.JointAction{grid.MoveAction(grid.East)})
	if got := (AStar{H: h}).F(next); got != 2 {
		t.Fatalf("A* F(next)=%d want=2", got)
	}
	if got := (Greedy{H: h}).F(next); got != 1 {
		t.Fatalf("greedy F(next)=%d want=1", got)
	}
}

func TestHIgnoresOtherColors(t *testing.T) {
	s := rowFixture()
	if got := New(s, Options{Color: "blue", Agent: -1}).H(s); got != 0 {
		t.Fatalf("H()=%d want=0 for untracked color", got)
	}
}

func TestNearestBoxUsesGoalDistance(t *testing.T) {
	s := rowFixture()
	h := New(s, AllGoals())
	if p, ok := h.NearestBox(s, grid.Pos(1, 6), 0); !ok || p != grid.Pos(1, 5) {
		t.Fatalf("NearestBox((1,6))=%v,%v want=(1,5)", p, ok)
	}
	if p, ok := h.NearestBox(s, grid.Pos(1, 7), 0); !ok || p != grid.Pos(1, 8) {
		t.Fatalf("NearestBox((1,7))=%v,%v want=(1,8)", p, ok)
	}
	if _, ok := h.NearestBox(s, grid.Pos(1, 3), 0); ok {
		t.Fatalf("cell without a goal has no nearest box")
	}
}

func TestFloodStopsAtWalls(t *testing.T) {
	s := world.MustState([]string{
		"+++++",
		"+0+ +",
		"+++++",
	}, nil, colors)
	f := Flood(s, []grid.Position{grid.Pos(1, 1)})
	if d, ok := f.At(grid.Pos(1, 1)); !ok || d != 0 {
		t.Fatalf("source distance=%d,%v", d, ok)
	}
	if _, ok := f.At(grid.Pos(1, 3)); ok {
		t.Fatalf("cell behind a wall must be unreachable")
	}
	if _, ok := f.At(grid.Pos(9, 9)); ok {
		t.Fatalf("out of bounds must be unreachable")
	}
}

func TestHTargetTracksSingleGoal(t *testing.T) {
	s := rowFixture()
	target := grid.Pos(1, 7)
	h := New(s, Options{Agent: -1, Target: &target})
	// closest box to (1,7) is (1,8); the agent sits next to a loose box
	if got := h.H(s); got != 1 {
		t.Fatalf("H()=%d want=1", got)
	}
}
