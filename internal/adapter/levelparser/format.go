package levelparser

import (
	"sort"
	"strings"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// Format renders s in the server level format, so that Parse(Format(...))
// rebuilds the same cells.
func Format(domain, name string, s *world.State) string {
	var b strings.Builder
	b.WriteString("#domain\n" + domain + "\n#levelname\n" + name + "\n#colors\n")

	groups := map[string][]string{}
	for r, color := range s.Colors() {
		groups[color] = append(groups[color], string(r))
	}
	names := make([]string, 0, len(groups))
	for color := range groups {
		names = append(names, color)
	}
	sort.Strings(names)
	for _, color := range names {
		objs := groups[color]
		sort.Strings(objs)
		b.WriteString(color + ": " + strings.Join(objs, ", ") + "\n")
	}

	b.WriteString("#initial\n")
	writeRows(&b, s, func(p grid.Position) (rune, bool) { return s.Occupant(p) })
	b.WriteString("#goal\n")
	writeRows(&b, s, func(p grid.Position) (rune, bool) { return s.GoalAt(p) })
	b.WriteString("#end\n")
	return b.String()
}

func writeRows(b *strings.Builder, s *world.State, cell func(grid.Position) (rune, bool)) {
	for r := 0; r < s.Height(); r++ {
		for c := 0; c < s.Width(); c++ {
			p := grid.Pos(r, c)
			switch ch, ok := cell(p); {
			case s.IsWall(p):
				b.WriteByte('+')
			case ok:
				b.WriteRune(ch)
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
}
