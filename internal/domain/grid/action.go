package grid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAction = errors.New("invalid action")

type ActionKind uint8

const (
	NoOp ActionKind = iota
	Move
	Push
	Pull
)

func (k ActionKind) String() string {
	switch k {
	case NoOp:
		return "NoOp"
	case Move:
		return "Move"
	case Push:
		return "Push"
	case Pull:
		return "Pull"
	default:
		return "Unknown"
	}
}

// Action is one agent's action for a single time step. BoxDir is only
// meaningful for Push and Pull; AgentDir is unused for NoOp.
type Action struct {
	Kind     ActionKind
	AgentDir Direction
	BoxDir   Direction
}

func NoOpAction() Action {
	return Action{Kind: NoOp}
}

func MoveAction(d Direction) Action {
	return Action{Kind: Move, AgentDir: d}
}

func PushAction(agentDir, boxDir Direction) Action {
	return Action{Kind: Push, AgentDir: agentDir, BoxDir: boxDir}
}

func PullAction(agentDir, boxDir Direction) Action {
	return Action{Kind: Pull, AgentDir: agentDir, BoxDir: boxDir}
}

func (a Action) IsNoOp() bool {
	return a.Kind == NoOp
}

func (a Action) String() string {
	switch a.Kind {
	case Move:
		return fmt.Sprintf("Move(%s)", a.AgentDir)
	case Push:
		return fmt.Sprintf("Push(%s,%s)", a.AgentDir, a.BoxDir)
	case Pull:
		return fmt.Sprintf("Pull(%s,%s)", a.AgentDir, a.BoxDir)
	default:
		return "NoOp"
	}
}

// ParseAction reads the server wire form produced by String.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "NoOp" {
		return NoOpAction(), nil
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	name, args := s[:open], strings.Split(s[open+1:len(s)-1], ",")
	dirs := make([]Direction, 0, len(args))
	for _, arg := range args {
		d, err := ParseDirection(strings.TrimSpace(arg))
		if err != nil {
			return Action{}, err
		}
		dirs = append(dirs, d)
	}
	switch {
	case name == "Move" && len(dirs) == 1:
		return MoveAction(dirs[0]), nil
	case name == "Push" && len(dirs) == 2:
		return PushAction(dirs[0], dirs[1]), nil
	case name == "Pull" && len(dirs) == 2:
		return PullAction(dirs[0], dirs[1]), nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

var allActions = buildAllActions()

func buildAllActions() []Action {
	out := make([]Action, 0, 4+12+12)
	for _, d := range Directions {
		out = append(out, MoveAction(d))
	}
	for _, a := range Directions {
		for _, b := range Directions {
			// a box cannot be pushed back into the agent's cell
			if b != a.Opposite() {
				out = append(out, PushAction(a, b))
			}
		}
	}
	for _, a := range Directions {
		for _, b := range Directions {
			// a box cannot be pulled into the agent's destination
			if b != a {
				out = append(out, PullAction(a, b))
			}
		}
	}
	return out
}

// AllActions returns every Move, Push and Pull in a fixed order. The
// returned slice must not be modified.
func AllActions() []Action {
	return allActions
}
