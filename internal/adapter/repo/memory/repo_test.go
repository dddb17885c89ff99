package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gridplan/internal/app/ports"
)

func TestRunRepoSaveGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepo(NewStore())
	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Save(ctx, ports.RunRecord{ID: id, Status: ports.RunSolved, Actions: []string{"NoOp"}}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if err := repo.Save(ctx, ports.RunRecord{ID: "a"}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate save err=%v want ErrConflict", err)
	}

	got, err := repo.GetByID(ctx, "b")
	if err != nil || got.ID != "b" || len(got.Actions) != 1 {
		t.Fatalf("get b=%+v err=%v", got, err)
	}
	if _, err := repo.GetByID(ctx, "zzz"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("list order=%v", list)
	}
}

func TestEventRepoAppendAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo(NewStore())
	evts := []ports.SessionEvent{
		{Type: "step_rejected", Step: 3, OccurredAt: time.Unix(1, 0)},
		{Type: "replanned", Step: 3, OccurredAt: time.Unix(2, 0)},
	}
	if err := repo.Append(ctx, "run-1", evts); err != nil {
		t.Fatalf("append: %v", err)
	}
	all, _ := repo.ListByRunID(ctx, "run-1", 0)
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	first, _ := repo.ListByRunID(ctx, "run-1", 1)
	if len(first) != 1 || first[0].Type != "step_rejected" {
		t.Fatalf("limit=1 gave %v", first)
	}
	if none, _ := repo.ListByRunID(ctx, "other", 0); len(none) != 0 {
		t.Fatalf("expected no events for other run")
	}
}
