package world

import (
	"errors"
	"testing"

	"gridplan/internal/domain/grid"
)

var redColors = Colors{'0': "red", '1': "blue", 'A': "red", 'B': "blue"}

func pushFixture() *State {
	return MustState(
		[]string{
			"++++++",
			"+0A  +",
			"++++++",
		},
		[]string{
			"++++++",
			"+  A +",
			"++++++",
		},
		redColors,
	)
}

func corridorFixture() *State {
	return MustState(
		[]string{
			"+++++",
			"+0 1+",
			"+++++",
		},
		nil,
		redColors,
	)
}

func TestNewStateRejectsInvalidLayout(t *testing.T) {
	_, err := NewState(MustLayout([]string{"+0+", "+0+"}, nil, redColors))
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("duplicate agent: err=%v want ErrInvalidLayout", err)
	}
	_, err = NewState(MustLayout([]string{"+0C+"}, nil, redColors))
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("uncolored box: err=%v want ErrInvalidLayout", err)
	}
	if _, err := LayoutFromRows([]string{"+0?+"}, nil, redColors); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("bad cell: err=%v want ErrInvalidLayout", err)
	}
}

func TestPushSatisfiesAdjacentGoal(t *testing.T) {
	s := pushFixture()
	if s.GoalCount() != 1 || s.IsGoalState() {
		t.Fatalf("initial goal count=%d want=1", s.GoalCount())
	}
	next := s.Apply(grid.JointAction{grid.PushAction(grid.East, grid.East)})
	if !next.IsGoalState() {
		t.Fatalf("expected goal state after push:\n%s", next)
	}
	if !next.AgentAchievedGoal(0) {
		t.Fatalf("expected push to be credited to agent 0")
	}
	if p, _ := next.AgentPosition(0); p != grid.Pos(1, 2) {
		t.Fatalf("agent position=%v want=(1,2)", p)
	}
	if next.G() != 1 || next.Parent() != s {
		t.Fatalf("unexpected lineage g=%d", next.G())
	}
	if !s.Boxes().Has(grid.Pos(1, 2)) {
		t.Fatalf("apply mutated the parent state")
	}
}

func TestPullMovesBoxIntoVacatedCell(t *testing.T) {
	s := MustState([]string{
		"++++++",
		"+ 0A +",
		"++++++",
	}, nil, redColors)
	next := s.Apply(grid.JointAction{grid.PullAction(grid.West, grid.East)})
	if r, ok := next.BoxAt(grid.Pos(1, 2)); !ok || r != 'A' {
		t.Fatalf("box not pulled into (1,2):\n%s", next)
	}
	if p, _ := next.AgentPosition(0); p != grid.Pos(1, 1) {
		t.Fatalf("agent position=%v want=(1,1)", p)
	}
}

func TestApplicableRejectsForeignColorBoxAndWalls(t *testing.T) {
	s := MustState([]string{
		"+++++",
		"+0B +",
		"+++++",
	}, nil, redColors)
	if s.Applicable(grid.JointAction{grid.PushAction(grid.East, grid.East)}) {
		t.Fatalf("agent 0 must not push a blue box")
	}
	if s.Applicable(grid.JointAction{grid.MoveAction(grid.North)}) {
		t.Fatalf("agent 0 must not walk into a wall")
	}
	if !s.Applicable(grid.NoOps(1)) {
		t.Fatalf("NoOp must always be applicable")
	}
}

func TestApplicableRejectsConflictingDestinations(t *testing.T) {
	s := corridorFixture()
	joint := grid.JointAction{grid.MoveAction(grid.East), grid.MoveAction(grid.West)}
	if s.Applicable(joint) {
		t.Fatalf("two agents claimed the same cell")
	}
	_, err := s.TryApply(joint)
	var inapplicable *InapplicableError
	if !errors.As(err, &inapplicable) || !errors.Is(err, ErrInapplicable) {
		t.Fatalf("TryApply err=%v want *InapplicableError", err)
	}
	if inapplicable.Agent != 1 {
		t.Fatalf("conflict reported for agent %d want=1", inapplicable.Agent)
	}
}

func TestApplyPanicsOnInapplicableJointAction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	corridorFixture().Apply(grid.JointAction{grid.MoveAction(grid.North), grid.NoOpAction()})
}

func TestKeyIgnoresParentAndCost(t *testing.T) {
	s := corridorFixture()
	there := s.Apply(grid.JointAction{grid.MoveAction(grid.East), grid.NoOpAction()})
	back := there.Apply(grid.JointAction{grid.MoveAction(grid.West), grid.NoOpAction()})
	if !back.Equal(s) || back.Key() != s.Key() {
		t.Fatalf("expected equal configurations to share a key")
	}
	if back.G() == s.G() {
		t.Fatalf("cost should still differ")
	}
	if there.Equal(s) {
		t.Fatalf("different configurations compared equal")
	}
}

func TestExpandHonorsCommittedNextState(t *testing.T) {
	s := corridorFixture()
	next := s.Apply(grid.JointAction{grid.NoOpAction(), grid.MoveAction(grid.West)})
	children := s.Expand(0, next, nil)
	if len(children) != 1 {
		t.Fatalf("children=%d want=1 (only NoOp fits the commitment)", len(children))
	}
	if p, _ := children[0].AgentPosition(1); p != grid.Pos(1, 2) {
		t.Fatalf("agent 1 did not follow its commitment: %v", p)
	}
	free := s.Expand(0, nil, nil)
	if len(free) != 2 {
		t.Fatalf("unconstrained children=%d want=2", len(free))
	}
}

func TestExpandIgnoringOthersWalksOverObjects(t *testing.T) {
	s := MustState([]string{
		"+++++",
		"+0B +",
		"+++++",
	}, nil, redColors)
	var over *State
	for _, c := range s.ExpandIgnoringOthers(0, nil, nil) {
		if c.JointAction()[0] == grid.MoveAction(grid.East) {
			over = c
		}
	}
	if over == nil {
		t.Fatalf("expected a Move(E) successor onto the blue box")
	}
	if _, ok := over.BoxAt(grid.Pos(1, 2)); ok {
		t.Fatalf("box should be hidden under the agent")
	}
	if h := over.HiddenAt(grid.Pos(1, 2)); len(h) != 1 || h[0] != 'B' {
		t.Fatalf("hidden=%q want=[B]", string(h))
	}
	if over.Key() == s.Key() {
		t.Fatalf("hidden objects must be part of the key")
	}

	past := over.ApplyIgnoring(0, grid.MoveAction(grid.East))
	if r, ok := past.BoxAt(grid.Pos(1, 2)); !ok || r != 'B' {
		t.Fatalf("box should reappear once the agent moves on:\n%s", past)
	}
	if past.HasHidden() {
		t.Fatalf("hidden table should be empty")
	}
	if !over.HasHidden() {
		t.Fatalf("ApplyIgnoring mutated its parent")
	}
}

func TestPlanExtractionAndReplay(t *testing.T) {
	s := corridorFixture()
	a := s.Apply(grid.JointAction{grid.MoveAction(grid.East), grid.NoOpAction()})
	b := a.Apply(grid.JointAction{grid.MoveAction(grid.West), grid.NoOpAction()})
	plan := b.ExtractPlan()
	if len(plan) != 3 || plan[0] != s || plan.Last() != b {
		t.Fatalf("unexpected plan length=%d", len(plan))
	}
	replayed, err := Replay(s, plan.Actions())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replayed.Last().Equal(b) {
		t.Fatalf("replay diverged")
	}
	bad := []grid.JointAction{{grid.MoveAction(grid.North), grid.NoOpAction()}}
	if _, err := Replay(s, bad); !errors.Is(err, ErrInapplicable) {
		t.Fatalf("Replay err=%v want ErrInapplicable", err)
	}
}

func TestPlanWithGoalsKeepsCells(t *testing.T) {
	s := pushFixture()
	plan := s.Apply(grid.JointAction{grid.PushAction(grid.East, grid.East)}).ExtractPlan()
	fake := NewObjects().Set(grid.Pos(1, 2), '0')
	rebased := plan.WithGoals(fake)
	if rebased[0].GoalCount() != 1 || rebased.Last().GoalCount() != 0 {
		t.Fatalf("goal counts=%d,%d want=1,0", rebased[0].GoalCount(), rebased.Last().GoalCount())
	}
	if rebased.Last().Goals().Has(grid.Pos(1, 3)) {
		t.Fatalf("replacement goals should drop the original goal")
	}
	if !plan.Last().Goals().Has(grid.Pos(1, 3)) {
		t.Fatalf("original timeline changed")
	}
	if rebased[0].Parent() != nil || !rebased.Last().Equal(plan.Last().WithGoals(fake)) {
		t.Fatalf("rebased timeline must start at a root and reach the same cells")
	}
}

func TestGoalCountColorAndSatisfiedGoals(t *testing.T) {
	s := MustState([]string{
		"+++++++",
		"+0A 1B+",
		"+++++++",
	}, []string{
		"+++++++",
		"+ A  0+",
		"+++++++",
	}, redColors)
	if got := s.GoalCountColor("red"); got != 1 {
		t.Fatalf("red goals=%d want=1", got)
	}
	if got := s.GoalCountColor("blue"); got != 0 {
		t.Fatalf("blue goals=%d want=0", got)
	}
	if got := s.SatisfiedGoals().Len(); got != 1 {
		t.Fatalf("satisfied=%d want=1", got)
	}
	if ids := s.AgentsOfColor("blue"); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("AgentsOfColor(blue)=%v", ids)
	}
}
