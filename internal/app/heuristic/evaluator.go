package heuristic

import (
	"fmt"

	"gridplan/internal/domain/world"
)

// Evaluator orders the best-first frontier; lower values come out first.
type Evaluator interface {
	F(s *world.State) int
	String() string
}

type Estimator interface {
	H(s *world.State) int
}

type AStar struct {
	H Estimator
}

func (e AStar) F(s *world.State) int { return s.G() + e.H.H(s) }
func (e AStar) String() string       { return "A*" }

type WeightedAStar struct {
	H Estimator
	W int
}

func (e WeightedAStar) F(s *world.State) int { return s.G() + e.W*e.H.H(s) }
func (e WeightedAStar) String() string       { return fmt.Sprintf("WA*(%d)", e.W) }

type Greedy struct {
	H Estimator
}

func (e Greedy) F(s *world.State) int { return e.H.H(s) }
func (e Greedy) String() string       { return "greedy" }
