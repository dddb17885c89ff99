package grid

import (
	"fmt"
	"strings"
)

// JointAction holds one action per agent, indexed by agent number.
type JointAction []Action

func NoOps(n int) JointAction {
	out := make(JointAction, n)
	for i := range out {
		out[i] = NoOpAction()
	}
	return out
}

func (j JointAction) Clone() JointAction {
	out := make(JointAction, len(j))
	copy(out, j)
	return out
}

func (j JointAction) Equal(o JointAction) bool {
	if len(j) != len(o) {
		return false
	}
	for i := range j {
		if j[i] != o[i] {
			return false
		}
	}
	return true
}

func (j JointAction) IsNoOp() bool {
	for _, a := range j {
		if !a.IsNoOp() {
			return false
		}
	}
	return true
}

// With returns a copy of j where agent's action is replaced by a.
func (j JointAction) With(agent int, a Action) JointAction {
	out := j.Clone()
	out[agent] = a
	return out
}

func (j JointAction) String() string {
	parts := make([]string, len(j))
	for i, a := range j {
		parts[i] = a.String()
	}
	return strings.Join(parts, ";")
}

func ParseJointAction(s string) (JointAction, error) {
	fields := strings.Split(strings.TrimSpace(s), ";")
	out := make(JointAction, 0, len(fields))
	for i, f := range fields {
		a, err := ParseAction(f)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func IsAgent(r rune) bool {
	return r >= '0' && r <= '9'
}

func IsBox(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func AgentIndex(r rune) int {
	return int(r - '0')
}

func AgentRune(i int) rune {
	return rune('0' + i)
}
