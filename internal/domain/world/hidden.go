package world

import (
	"sort"

	"gridplan/internal/domain/grid"
)

// hiddenTable keeps objects an agent walked over while ignoring others.
// Each cell stacks the displaced objects; the top one becomes visible
// again when the cell is vacated. Tables are copied on write.
type hiddenTable map[grid.Position][]rune

func (h hiddenTable) clone() hiddenTable {
	out := make(hiddenTable, len(h)+1)
	for p, rs := range h {
		out[p] = append([]rune(nil), rs...)
	}
	return out
}

func (h hiddenTable) appendKey(buf []byte) []byte {
	ps := make([]grid.Position, 0, len(h))
	for p := range h {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Less(ps[j]) })
	for _, p := range ps {
		buf = append(buf, byte(p.Row>>8), byte(p.Row), byte(p.Col>>8), byte(p.Col))
		for _, r := range h[p] {
			buf = append(buf, byte(r))
		}
		buf = append(buf, 0)
	}
	return buf
}

// cells is a scratch copy of a state's movable objects used while
// building a successor.
type cells struct {
	agents Objects
	boxes  Objects
	hidden hiddenTable
	dirty  bool
}

func (s *State) cells() *cells {
	return &cells{agents: s.agents, boxes: s.boxes, hidden: s.hidden}
}

func (c *cells) at(p grid.Position) (rune, bool) {
	if r, ok := c.agents.Get(p); ok {
		return r, true
	}
	return c.boxes.Get(p)
}

func (c *cells) set(p grid.Position, r rune) {
	if grid.IsAgent(r) {
		c.agents = c.agents.Set(p, r)
	} else {
		c.boxes = c.boxes.Set(p, r)
	}
}

func (c *cells) unset(p grid.Position, r rune) {
	if grid.IsAgent(r) {
		c.agents = c.agents.Delete(p)
	} else {
		c.boxes = c.boxes.Delete(p)
	}
}

// remove takes the visible object off p and surfaces the top hidden one.
func (c *cells) remove(p grid.Position) (rune, bool) {
	r, ok := c.at(p)
	if !ok {
		return 0, false
	}
	c.unset(p, r)
	if len(c.hidden[p]) > 0 {
		c.own()
		stack := c.hidden[p]
		top := stack[len(stack)-1]
		if len(stack) == 1 {
			delete(c.hidden, p)
		} else {
			c.hidden[p] = stack[:len(stack)-1]
		}
		c.set(p, top)
	}
	return r, true
}

// place puts r on p, hiding whatever was visible there.
func (c *cells) place(p grid.Position, r rune) {
	if cur, ok := c.at(p); ok {
		c.own()
		c.unset(p, cur)
		c.hidden[p] = append(c.hidden[p], cur)
	}
	c.set(p, r)
}

func (c *cells) own() {
	if c.dirty {
		return
	}
	c.hidden = c.hidden.clone()
	c.dirty = true
}
