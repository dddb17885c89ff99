package memory

import (
	"context"
	"fmt"

	"gridplan/internal/app/ports"
)

type RunRepo struct {
	store *Store
}

func NewRunRepo(store *Store) RunRepo {
	return RunRepo{store: store}
}

func (r RunRepo) Save(_ context.Context, run ports.RunRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.runs[run.ID]; ok {
		return fmt.Errorf("%w: run %s already exists", ports.ErrConflict, run.ID)
	}
	run.Actions = append([]string(nil), run.Actions...)
	r.store.runs[run.ID] = run
	r.store.order = append(r.store.order, run.ID)
	return nil
}

func (r RunRepo) GetByID(_ context.Context, id string) (ports.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[id]
	if !ok {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	return run, nil
}

// List returns the newest runs first.
func (r RunRepo) List(_ context.Context, limit int) ([]ports.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := len(r.store.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ports.RunRecord, 0, n)
	for i := len(r.store.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.store.runs[r.store.order[i]])
	}
	return out, nil
}
