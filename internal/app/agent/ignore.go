package agent

import (
	"fmt"
	"slices"

	"gridplan/internal/app/heuristic"
	"gridplan/internal/app/strategy"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// SearchIgnore satisfies the goal at goalPos with agent, first planning as
// if other objects were not there and then asking helper agents to clear
// whatever the path runs into. performed holds, per agent, the time index
// of its last committed action; reserved cells may not be used as the
// agent's resting cell. strat may be nil.
func (p *Planner) SearchIgnore(agent int, planned world.Plan, strat strategy.Strategy, goalPos grid.Position, performed []int, reserved map[grid.Position]bool) (world.Plan, error) {
	p.helpers = 0
	return p.searchIgnore(agent, planned, strat, goalPos, nil, performed, reserved, 0)
}

// searchIgnore is SearchIgnore at a given helper depth. When box is set
// the box standing there is the one to bring to goalPos.
func (p *Planner) searchIgnore(agent int, planned world.Plan, strat strategy.Strategy, goalPos grid.Position, box *grid.Position, performed []int, reserved map[grid.Position]bool, depth int) (world.Plan, error) {
	if depth > p.cfg.MaxDepth {
		return nil, ErrDepthExceeded
	}
	if len(planned) == 0 {
		return nil, fmt.Errorf("%w: empty timeline", ErrNoPlan)
	}
	last := planned.Last()
	goal, ok := last.GoalAt(goalPos)
	if !ok {
		return nil, fmt.Errorf("%w: no goal at %v", ErrNoPlan, goalPos)
	}
	if last.IsGoalSatisfied(goalPos) {
		return planned, nil
	}
	if _, ok := last.AgentPosition(agent); !ok {
		return nil, fmt.Errorf("%w: agent %d is not on the map", ErrNoPlan, agent)
	}

	if grid.IsBox(goal) {
		walked, err := p.walkToBox(agent, planned, goalPos, box, performed, depth)
		if err != nil {
			return nil, err
		}
		planned = walked
		performed = PlanToActions(planned)
		if planned.Last().IsGoalSatisfied(goalPos) {
			return planned, nil
		}
	}

	moves := performed[agent]
	start := planned[moves]
	if strat == nil {
		target := goalPos
		if depth == 0 {
			strat = p.NewStrategy(start, agent, &target)
		} else {
			strat = p.helperStrategy(start, agent, &target)
		}
	}
	target := planned.Last().GoalCount()
	strat.AddToFrontier(start)
	for {
		if err := p.interrupted(); err != nil {
			p.finish(strat, agent, false)
			return nil, err
		}
		if strat.FrontierIsEmpty() || p.exhausted(strat) {
			p.finish(strat, agent, false)
			return nil, fmt.Errorf("agent %d, goal %v: %w", agent, goalPos, ErrNoPlan)
		}
		leaf := strat.GetAndRemoveLeaf()
		if leaf.G() > start.G() && reached(leaf, agent, goalPos, goal) {
			pos, _ := leaf.AgentPosition(agent)
			if !reserved[pos] && !holdsBox(leaf, pos) {
				if rest, ok := replaySuffix(leaf, planned, agent); ok {
					end := leaf
					if len(rest) > 0 {
						end = rest.Last()
					}
					if end.GoalCount() < target {
						p.finish(strat, agent, true)
						return p.clearPath(agent, planned, moves, leaf.ExtractPlan(), goalPos, goal, box, reserved, depth)
					}
				}
			}
		}
		strat.AddToExplored(leaf)
		next, ok := committedNext(leaf, planned, agent)
		if !ok {
			continue
		}
		for _, child := range leaf.ExpandIgnoringOthers(agent, next, p.rng) {
			if !strat.IsExplored(child) && !strat.InFrontier(child) {
				strat.AddToFrontier(child)
			}
		}
	}
}

// reached reports whether s satisfies the searched goal. Agent goals are
// met by the agent standing on any goal cell of its own.
func reached(s *world.State, agent int, goalPos grid.Position, goal rune) bool {
	if grid.IsAgent(goal) {
		pos, ok := s.AgentPosition(agent)
		if !ok {
			return false
		}
		g, ok := s.GoalAt(pos)
		return ok && g == grid.AgentRune(agent)
	}
	return s.IsGoalSatisfied(goalPos)
}

// holdsBox reports whether a box stands at p, visible or hidden beneath
// the agent. Agents hidden there are moved aside later by clearPath.
func holdsBox(s *world.State, p grid.Position) bool {
	if _, ok := s.BoxAt(p); ok {
		return true
	}
	for _, r := range s.HiddenAt(p) {
		if grid.IsBox(r) {
			return true
		}
	}
	return false
}

// walkToBox brings agent next to the box it should move to goalPos: the
// one at from when set, otherwise the nearest eligible one. The walk is
// itself a search for temporary agent goals around the box; the agent
// leaves that cell again, so reserved cells are allowed.
func (p *Planner) walkToBox(agent int, planned world.Plan, goalPos grid.Position, from *grid.Position, performed []int, depth int) (world.Plan, error) {
	last := planned.Last()
	var (
		box grid.Position
		ok  bool
	)
	if from != nil {
		box, ok = *from, movable(last, *from, goalPos, agent)
	} else {
		box, ok = heuristic.New(last, heuristic.AllGoals()).NearestBox(last, goalPos, agent)
	}
	if !ok {
		return nil, fmt.Errorf("%w: agent %d has no box for goal %v", ErrNoPlan, agent, goalPos)
	}
	pos, _ := last.AgentPosition(agent)
	if pos.Distance(box) == 1 {
		return planned, nil
	}
	ar := grid.AgentRune(agent)
	goals := last.SatisfiedGoals()
	var (
		walkGoal grid.Position
		found    bool
	)
	for _, n := range box.Neighbors() {
		if last.IsWall(n) || goals.Has(n) {
			continue
		}
		goals = goals.Set(n, ar)
		walkGoal, found = n, true
	}
	if !found {
		return nil, fmt.Errorf("%w: box at %v cannot be reached", ErrNoPlan, box)
	}
	walked, err := p.searchIgnore(agent, planned.WithGoals(goals), nil, walkGoal, nil, performed, nil, depth+1)
	if err != nil {
		return nil, err
	}
	return walked.WithGoals(planned[0].Goals()), nil
}

// clearPath turns a path found while ignoring other objects into a legal
// timeline. Objects in the way are moved aside by helper agents, one fake
// goal at a time, until the path is clear; then the agent's actions are
// woven into the resulting timeline and displaced objects are put back.
func (p *Planner) clearPath(agent int, planned world.Plan, moves int, path world.Plan, goalPos grid.Position, goal rune, box *grid.Position, reserved map[grid.Position]bool, depth int) (world.Plan, error) {
	origin, _ := planned[moves].AgentPosition(agent)
	actions := agentActions(path, agent, moves)
	target := planned.Last().GoalCount()
	goals := planned[0].Goals()
	var displaced []grid.Position

	current := planned
	for fix := 0; ; fix++ {
		if fix > p.cfg.MaxFixups {
			return nil, ErrDepthExceeded
		}
		fresh := current.Last()
		performed := PlanToActions(current)
		if pos, _ := fresh.AgentPosition(agent); performed[agent] != moves || pos != origin {
			p.log.Debug("agent drifted, restarting", "agent", agent, "goal", goalPos.String())
			if box != nil && !movable(fresh, *box, goalPos, agent) {
				box = nil
			}
			again, err := p.searchIgnore(agent, current, nil, goalPos, box, performed, reserved, depth+1)
			if err != nil {
				return nil, err
			}
			return p.settle(again, agent, goalPos, displaced, reserved, target, depth)
		}

		blocking := lookAhead(fresh, agent, actions)
		if blocking.Len() == 0 {
			merged, err := ExtendSolution(current, path, agent)
			if err != nil {
				p.stats.Conflicts++
				return nil, err
			}
			if !reached(merged.Last(), agent, goalPos, goal) {
				return nil, fmt.Errorf("%w: woven plan misses goal %v", ErrNoPlan, goalPos)
			}
			return p.settle(merged, agent, goalPos, displaced, reserved, target, depth)
		}

		keep := pathCells(fresh, agent, actions)
		for c := range reserved {
			keep[c] = true
		}
		fake, origins, err := moveObjects(fresh, blocking, keep)
		if err != nil {
			return nil, err
		}
		fake.Each(func(dest grid.Position, _ rune) bool {
			if from, ok := origins[dest]; ok && fresh.IsGoalSatisfied(from) && !slices.Contains(displaced, from) {
				displaced = append(displaced, from)
			}
			return true
		})
		helped, err := p.relocate(current, fake, origins, keep, depth)
		if err != nil {
			return nil, err
		}
		current = helped.WithGoals(goals)
	}
}

// settle brings back the objects moved off satisfied goals to clear the
// way, then checks that plan ends with fewer unsatisfied goals than
// target. The agent's resting cell and goalPos stay untouched.
func (p *Planner) settle(plan world.Plan, agent int, goalPos grid.Position, displaced []grid.Position, reserved map[grid.Position]bool, target, depth int) (world.Plan, error) {
	keep := map[grid.Position]bool{goalPos: true}
	if end, ok := plan.Last().AgentPosition(agent); ok {
		keep[end] = true
	}
	for c := range reserved {
		keep[c] = true
	}
	goals := plan[0].Goals()
	for _, pos := range displaced {
		last := plan.Last()
		if last.IsGoalSatisfied(pos) {
			continue
		}
		g, _ := last.GoalAt(pos)
		restored, err := p.helpOut(plan, g, pos, nil, keep, depth)
		if err != nil {
			return nil, fmt.Errorf("putting %c back at %v: %w", g, pos, err)
		}
		plan = restored.WithGoals(goals)
	}
	if plan.Last().GoalCount() >= target {
		return nil, fmt.Errorf("%w: woven plan misses goal %v", ErrNoPlan, goalPos)
	}
	return plan, nil
}

// relocate satisfies the highest ranked fake goal. The object's own cell
// stops counting as a goal while it is moved, and a box is fetched from
// exactly that cell.
func (p *Planner) relocate(current world.Plan, fake world.Objects, origins map[grid.Position]grid.Position, keep map[grid.Position]bool, depth int) (world.Plan, error) {
	fresh := current.Last()
	ranked := orderFake(fresh, fake)
	if len(ranked) == 0 {
		return nil, ErrNoRelocation
	}
	goalPos := ranked[0]
	obj, _ := fake.Get(goalPos)
	goals := fresh.SatisfiedGoals()
	var box *grid.Position
	if from, ok := origins[goalPos]; ok {
		goals = goals.Delete(from)
		if grid.IsBox(obj) {
			box = &from
		}
	}
	sol, err := p.helpOut(current.WithGoals(goals.Set(goalPos, obj)), obj, goalPos, box, keep, depth)
	if err != nil {
		return nil, fmt.Errorf("moving %c to %v: %w", obj, goalPos, err)
	}
	return sol, nil
}

// helpOut brings obj to goalPos with the cheapest helper that manages
// it. Helpers are tried in turn until the budget runs out.
func (p *Planner) helpOut(plan world.Plan, obj rune, goalPos grid.Position, box *grid.Position, keep map[grid.Position]bool, depth int) (world.Plan, error) {
	performed := PlanToActions(plan)
	var (
		best    world.Plan
		lastErr error
	)
	for _, h := range helpersFor(plan.Last(), obj) {
		if p.helpers >= p.cfg.HelperBudget {
			if best == nil {
				return nil, ErrDepthExceeded
			}
			break
		}
		p.helpers++
		p.stats.Helpers++
		sol, err := p.searchIgnore(h, plan, nil, goalPos, box, performed, keep, depth+1)
		if err != nil {
			p.log.Trace("helper failed", "helper", h, "goal", goalPos.String(), "error", err)
			lastErr = err
			continue
		}
		if best == nil || len(sol) < len(best) {
			best = sol
		}
	}
	if best == nil && lastErr != nil {
		return nil, lastErr
	}
	if best == nil {
		return nil, fmt.Errorf("%w: nobody can move %c to %v", ErrNoPlan, obj, goalPos)
	}
	return best, nil
}

// movable reports whether agent can bring the box at p to goalPos.
func movable(s *world.State, p, goalPos grid.Position, agent int) bool {
	b, ok := s.BoxAt(p)
	if !ok {
		return false
	}
	g, ok := s.GoalAt(goalPos)
	return ok && g == b && s.Color(b) == s.AgentColor(agent)
}

// helpersFor lists the agents able to bring obj to a cell: the agent
// itself, or every agent sharing the box's color.
func helpersFor(s *world.State, obj rune) []int {
	if grid.IsAgent(obj) {
		id := grid.AgentIndex(obj)
		if _, ok := s.AgentPosition(id); ok {
			return []int{id}
		}
		return nil
	}
	return s.AgentsOfColor(s.Color(obj))
}
