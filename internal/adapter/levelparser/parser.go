package levelparser

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

// DefaultColor is assigned to boxes the #colors section does not mention.
const DefaultColor = "blue"

var ErrSyntax = errors.New("level syntax error")

type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

type Level struct {
	Domain string
	Name   string
	Layout world.Layout
	Text   string
}

// State builds the initial world state of the level.
func (l Level) State() (*world.State, error) {
	return world.NewState(l.Layout)
}

type scanner struct {
	sc   *bufio.Scanner
	line int
	text string
}

func (s *scanner) next() bool {
	if !s.sc.Scan() {
		return false
	}
	s.line++
	s.text = strings.TrimRight(s.sc.Text(), "\r")
	return true
}

func (s *scanner) fail(format string, args ...any) error {
	return &SyntaxError{Line: s.line, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) expect(header string) error {
	if !s.next() {
		return s.fail("missing %s", header)
	}
	if s.text != header {
		return s.fail("expected %s, got %q", header, s.text)
	}
	return nil
}

// value reads the single line following a header.
func (s *scanner) value(header string) (string, error) {
	if err := s.expect(header); err != nil {
		return "", err
	}
	if !s.next() {
		return "", s.fail("missing value for %s", header)
	}
	return strings.TrimSpace(s.text), nil
}

// block collects lines until the next header, which is left in s.text.
func (s *scanner) block() ([]string, error) {
	var out []string
	for s.next() {
		if strings.HasPrefix(s.text, "#") {
			return out, nil
		}
		out = append(out, s.text)
	}
	return nil, s.fail("unexpected end of level")
}

// Parse reads a level in the server format: #domain, #levelname, #colors,
// #initial, #goal and #end sections in that order.
func Parse(text string) (Level, error) {
	s := &scanner{sc: bufio.NewScanner(strings.NewReader(text))}
	s.sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	domain, err := s.value("#domain")
	if err != nil {
		return Level{}, err
	}
	name, err := s.value("#levelname")
	if err != nil {
		return Level{}, err
	}
	if err := s.expect("#colors"); err != nil {
		return Level{}, err
	}
	colorStart := s.line
	colorLines, err := s.block()
	if err != nil {
		return Level{}, err
	}
	colors, err := parseColors(colorLines, colorStart)
	if err != nil {
		return Level{}, err
	}

	if s.text != "#initial" {
		return Level{}, s.fail("expected #initial, got %q", s.text)
	}
	initial, err := s.block()
	if err != nil {
		return Level{}, err
	}
	if s.text != "#goal" {
		return Level{}, s.fail("expected #goal, got %q", s.text)
	}
	goal, err := s.block()
	if err != nil {
		return Level{}, err
	}
	if s.text != "#end" {
		return Level{}, s.fail("expected #end, got %q", s.text)
	}
	if len(goal) != len(initial) {
		return Level{}, s.fail("goal has %d rows, initial has %d", len(goal), len(initial))
	}

	layout, err := world.LayoutFromRows(initial, goal, colors)
	if err != nil {
		return Level{}, &SyntaxError{Line: s.line, Msg: err.Error()}
	}
	for _, b := range layout.Boxes {
		if _, ok := layout.Colors[b]; !ok {
			layout.Colors[b] = DefaultColor
		}
	}
	for _, g := range layout.Goals {
		if _, ok := layout.Colors[g]; !ok && grid.IsBox(g) {
			layout.Colors[g] = DefaultColor
		}
	}
	return Level{Domain: domain, Name: name, Layout: layout, Text: text}, nil
}

// parseColors reads "color: A, 0, B" lines.
func parseColors(lines []string, start int) (world.Colors, error) {
	out := world.Colors{}
	for i, line := range lines {
		color, objects, ok := strings.Cut(line, ":")
		color = strings.TrimSpace(color)
		if !ok || color == "" {
			return nil, &SyntaxError{Line: start + i + 1, Msg: fmt.Sprintf("malformed color line %q", line)}
		}
		for _, tok := range strings.Split(objects, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			r := []rune(tok)
			if len(r) != 1 || !(grid.IsAgent(r[0]) || grid.IsBox(r[0])) {
				return nil, &SyntaxError{Line: start + i + 1, Msg: fmt.Sprintf("bad object %q", tok)}
			}
			out[r[0]] = color
		}
	}
	return out, nil
}
