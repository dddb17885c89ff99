package agent

import (
	"gridplan/internal/app/decompose"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// lookAhead replays actions for agent on fresh, walking over anything in
// the way, and returns the objects the agent or its box would run into.
// Only objects that are still standing there in fresh are reported.
func lookAhead(fresh *world.State, agent int, actions []grid.Action) world.Objects {
	found := world.NewObjects()
	ar := grid.AgentRune(agent)
	color := fresh.AgentColor(agent)
	cur := fresh
	for _, a := range actions {
		pos, ok := cur.AgentPosition(agent)
		if !ok {
			break
		}
		var cells []grid.Position
		switch a.Kind {
		case grid.Move, grid.Pull:
			cells = append(cells, pos.Add(a.AgentDir))
		case grid.Push:
			boxFrom := pos.Add(a.AgentDir)
			if b, ok := cur.BoxAt(boxFrom); !ok || cur.Color(b) != color {
				cells = append(cells, boxFrom)
			}
			cells = append(cells, boxFrom.Add(a.BoxDir))
		}
		for _, c := range cells {
			r, ok := cur.Occupant(c)
			if !ok || r == ar {
				continue
			}
			if still, ok := fresh.Occupant(c); ok && still == r {
				found = found.Set(c, r)
			}
		}
		cur = cur.ApplyIgnoring(agent, a)
	}
	return found
}

// pathCells collects every cell the agent and the boxes it moves pass
// through while replaying actions on fresh.
func pathCells(fresh *world.State, agent int, actions []grid.Action) map[grid.Position]bool {
	out := map[grid.Position]bool{}
	cur := fresh
	if pos, ok := cur.AgentPosition(agent); ok {
		out[pos] = true
	}
	for _, a := range actions {
		pos, ok := cur.AgentPosition(agent)
		if !ok {
			break
		}
		switch a.Kind {
		case grid.Move, grid.Pull:
			out[pos.Add(a.AgentDir)] = true
		case grid.Push:
			boxFrom := pos.Add(a.AgentDir)
			out[boxFrom] = true
			out[boxFrom.Add(a.BoxDir)] = true
		}
		cur = cur.ApplyIgnoring(agent, a)
	}
	return out
}

// moveObjects picks, for every blocking object, the nearest cell off the
// reserved path that can take it, and returns those cells as fake goals
// along with the cell each object is fetched from. Free cells are
// preferred; failing that an occupied cell is chosen and its occupant is
// relocated in turn.
func moveObjects(s *world.State, blocking world.Objects, reserved map[grid.Position]bool) (world.Objects, map[grid.Position]grid.Position, error) {
	taken := make(map[grid.Position]bool, len(reserved))
	for p := range reserved {
		taken[p] = true
	}
	fake := world.NewObjects()
	origins := map[grid.Position]grid.Position{}
	var err error
	blocking.Each(func(p grid.Position, r rune) bool {
		fake, err = moveObject(s, p, r, taken, fake, origins)
		return err == nil
	})
	if err != nil {
		return world.Objects{}, nil, err
	}
	return fake, origins, nil
}

func moveObject(s *world.State, from grid.Position, r rune, taken map[grid.Position]bool, fake world.Objects, origins map[grid.Position]grid.Position) (world.Objects, error) {
	if dest, ok := nearestCell(s, from, r, taken, true); ok {
		taken[dest] = true
		origins[dest] = from
		return fake.Set(dest, r), nil
	}
	dest, ok := nearestCell(s, from, r, taken, false)
	if !ok {
		return fake, ErrNoRelocation
	}
	taken[dest] = true
	origins[dest] = from
	fake = fake.Set(dest, r)
	occ, _ := s.Occupant(dest)
	return moveObject(s, dest, occ, taken, fake, origins)
}

// nearestCell runs a breadth-first search from from and returns the first
// cell that may hold r.
func nearestCell(s *world.State, from grid.Position, r rune, taken map[grid.Position]bool, freeOnly bool) (grid.Position, bool) {
	seen := map[grid.Position]bool{from: true}
	queue := []grid.Position{from}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p != from && !taken[p] && accepts(s, p, r) && (!freeOnly || !s.Occupied(p)) {
			return p, true
		}
		for _, n := range p.Neighbors() {
			if seen[n] || s.IsWall(n) {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return grid.Position{}, false
}

// accepts reports whether parking r on p leaves the goals alone: the cell
// holds no goal, or an unsatisfied goal for r itself.
func accepts(s *world.State, p grid.Position, r rune) bool {
	g, ok := s.GoalAt(p)
	if !ok {
		return true
	}
	return g == r && !s.IsGoalSatisfied(p)
}

// orderFake ranks fake goals the same way real goals are ranked.
func orderFake(s *world.State, fake world.Objects) []grid.Position {
	return decompose.OrderGoals(s.WithGoals(fake))
}
