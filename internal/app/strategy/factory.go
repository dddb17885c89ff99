package strategy

import (
	"errors"
	"fmt"
	"strings"

	"gridplan/internal/app/heuristic"
	"gridplan/internal/domain/world"
)

var ErrUnknownKind = errors.New("unknown strategy")

type Kind string

const (
	KindBFS    Kind = "bfs"
	KindDFS    Kind = "dfs"
	KindAStar  Kind = "astar"
	KindWAStar Kind = "wastar"
	KindGreedy Kind = "greedy"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBFS, KindDFS, KindAStar, KindWAStar, KindGreedy:
		return k, nil
	case "":
		return KindGreedy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Factory builds a fresh strategy per search so nested searches never
// share frontiers.
type Factory struct {
	Kind   Kind
	Weight int
}

func DefaultFactory() Factory {
	return Factory{Kind: KindGreedy, Weight: 5}
}

// New returns a strategy whose heuristic, when it has one, is built from
// start and tracks what opts selects.
func (f Factory) New(start *world.State, opts heuristic.Options) Strategy {
	switch f.Kind {
	case KindBFS:
		return NewBFS()
	case KindDFS:
		return NewDFS()
	}
	h := heuristic.New(start, opts)
	switch f.Kind {
	case KindAStar:
		return NewBestFirst(heuristic.AStar{H: h})
	case KindWAStar:
		w := f.Weight
		if w <= 0 {
			w = 5
		}
		return NewBestFirst(heuristic.WeightedAStar{H: h, W: w})
	default:
		return NewBestFirst(heuristic.Greedy{H: h})
	}
}

// Weighted returns a weighted A* factory for helper searches.
func (f Factory) Weighted() Factory {
	w := f.Weight
	if w <= 0 {
		w = 5
	}
	return Factory{Kind: KindWAStar, Weight: w}
}
