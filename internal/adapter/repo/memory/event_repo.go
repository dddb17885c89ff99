package memory

import (
	"context"

	"gridplan/internal/app/ports"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, runID string, events []ports.SessionEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events[runID] = append(r.store.events[runID], events...)
	return nil
}

func (r EventRepo) ListByRunID(_ context.Context, runID string, limit int) ([]ports.SessionEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	items := r.store.events[runID]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]ports.SessionEvent(nil), items...), nil
}
