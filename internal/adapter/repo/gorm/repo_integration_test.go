package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gridplan/internal/app/ports"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("GRIDPLAN_DB_DSN")
	if dsn == "" {
		t.Skip("GRIDPLAN_DB_DSN is required for integration test")
	}
	return dsn
}

func TestRunAndEventRepos_RoundTrip(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn, PoolOptions{})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	runID := "it-run-roundtrip"
	_ = db.Exec("DELETE FROM solve_runs WHERE id = ?", runID).Error

	runs := NewRunRepo(db)
	events := NewEventRepo(db)

	created := time.Now().UTC().Truncate(time.Millisecond)
	if err := runs.Save(ctx, ports.RunRecord{
		ID:        runID,
		LevelName: "push",
		LevelText: "#domain\nhospital\n",
		Status:    ports.RunSolved,
		Actions:   []string{"Push(E,E)", "NoOp"},
		Length:    2,
		Duration:  1500 * time.Millisecond,
		CreatedAt: created,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	err = events.Append(ctx, runID, []ports.SessionEvent{
		{Type: "step_rejected", Step: 1, OccurredAt: created, Payload: map[string]any{"action": "NoOp"}},
		{Type: "session_finished", Step: 2, OccurredAt: created},
	})
	if err != nil {
		t.Fatalf("append events: %v", err)
	}

	got, err := runs.GetByID(ctx, runID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Actions) != 2 || got.Actions[0] != "Push(E,E)" {
		t.Fatalf("actions=%v", got.Actions)
	}
	if got.Duration != 1500*time.Millisecond || got.Status != ports.RunSolved {
		t.Fatalf("duration=%v status=%s", got.Duration, got.Status)
	}
	if err := runs.Save(ctx, got); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate save err=%v want ErrConflict", err)
	}

	evts, err := events.ListByRunID(ctx, runID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(evts) != 2 || evts[0].Type != "step_rejected" || evts[0].Payload["action"] != "NoOp" {
		t.Fatalf("events=%+v", evts)
	}
	if _, err := runs.GetByID(ctx, "it-missing-run"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
