package strategy

import (
	"fmt"
	"time"

	"gridplan/internal/domain/world"
)

// Strategy is the frontier and explored set of one graph search. Both
// sets are keyed on state identity, so a configuration is expanded at
// most once whatever path reached it.
type Strategy interface {
	AddToFrontier(s *world.State)
	GetAndRemoveLeaf() *world.State
	InFrontier(s *world.State) bool
	FrontierIsEmpty() bool
	CountFrontier() int
	AddToExplored(s *world.State)
	IsExplored(s *world.State) bool
	CountExplored() int
	Status() string
	String() string
}

type sets struct {
	explored map[string]struct{}
	frontier map[string]struct{}
	start    time.Time
}

func newSets() sets {
	return sets{
		explored: map[string]struct{}{},
		frontier: map[string]struct{}{},
		start:    time.Now(),
	}
}

func (b *sets) AddToExplored(s *world.State) {
	b.explored[s.Key()] = struct{}{}
}

func (b *sets) IsExplored(s *world.State) bool {
	_, ok := b.explored[s.Key()]
	return ok
}

func (b *sets) CountExplored() int {
	return len(b.explored)
}

func (b *sets) InFrontier(s *world.State) bool {
	_, ok := b.frontier[s.Key()]
	return ok
}

func (b *sets) track(s *world.State) {
	b.frontier[s.Key()] = struct{}{}
}

func (b *sets) untrack(s *world.State) {
	delete(b.frontier, s.Key())
}

func (b *sets) status() string {
	return fmt.Sprintf("#Explored: %6d, #Frontier: %6d, #Generated: %6d, Time: %3.2f s",
		len(b.explored), len(b.frontier), len(b.explored)+len(b.frontier), time.Since(b.start).Seconds())
}
