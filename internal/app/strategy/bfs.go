package strategy

import (
	"github.com/emirpasic/gods/queues/arrayqueue"
	"github.com/emirpasic/gods/stacks/arraystack"

	"gridplan/internal/domain/world"
)

type BFS struct {
	sets
	queue *arrayqueue.Queue
}

func NewBFS() *BFS {
	return &BFS{sets: newSets(), queue: arrayqueue.New()}
}

func (b *BFS) AddToFrontier(s *world.State) {
	b.queue.Enqueue(s)
	b.track(s)
}

func (b *BFS) GetAndRemoveLeaf() *world.State {
	v, ok := b.queue.Dequeue()
	if !ok {
		return nil
	}
	s := v.(*world.State)
	b.untrack(s)
	return s
}

func (b *BFS) FrontierIsEmpty() bool { return b.queue.Empty() }
func (b *BFS) CountFrontier() int    { return b.queue.Size() }
func (b *BFS) Status() string        { return b.status() }
func (b *BFS) String() string        { return "Breadth-first Search" }

type DFS struct {
	sets
	stack *arraystack.Stack
}

func NewDFS() *DFS {
	return &DFS{sets: newSets(), stack: arraystack.New()}
}

func (d *DFS) AddToFrontier(s *world.State) {
	d.stack.Push(s)
	d.track(s)
}

func (d *DFS) GetAndRemoveLeaf() *world.State {
	v, ok := d.stack.Pop()
	if !ok {
		return nil
	}
	s := v.(*world.State)
	d.untrack(s)
	return s
}

func (d *DFS) FrontierIsEmpty() bool { return d.stack.Empty() }
func (d *DFS) CountFrontier() int    { return d.stack.Size() }
func (d *DFS) Status() string        { return d.status() }
func (d *DFS) String() string        { return "Depth-first Search" }
