package strategy

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"gridplan/internal/app/heuristic"
	"gridplan/internal/domain/world"
)

type entry struct {
	state *world.State
	f     int
	seq   uint64
}

// BestFirst pops the lowest f first; equal f leaves in insertion order.
type BestFirst struct {
	sets
	eval  heuristic.Evaluator
	queue *priorityqueue.Queue
	seq   uint64
}

func NewBestFirst(eval heuristic.Evaluator) *BestFirst {
	return &BestFirst{
		sets: newSets(),
		eval: eval,
		queue: priorityqueue.NewWith(func(a, b interface{}) int {
			x, y := a.(entry), b.(entry)
			switch {
			case x.f != y.f:
				if x.f < y.f {
					return -1
				}
				return 1
			case x.seq < y.seq:
				return -1
			case x.seq > y.seq:
				return 1
			default:
				return 0
			}
		}),
	}
}

func (b *BestFirst) AddToFrontier(s *world.State) {
	b.seq++
	b.queue.Enqueue(entry{state: s, f: b.eval.F(s), seq: b.seq})
	b.track(s)
}

func (b *BestFirst) GetAndRemoveLeaf() *world.State {
	v, ok := b.queue.Dequeue()
	if !ok {
		return nil
	}
	s := v.(entry).state
	b.untrack(s)
	return s
}

func (b *BestFirst) FrontierIsEmpty() bool { return b.queue.Empty() }
func (b *BestFirst) CountFrontier() int    { return b.queue.Size() }
func (b *BestFirst) Status() string        { return b.status() }
func (b *BestFirst) String() string        { return "Best-first Search using " + b.eval.String() }
