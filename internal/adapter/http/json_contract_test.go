package httpadapter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gridplan/internal/app/ports"
	"gridplan/internal/app/replay"
	"gridplan/internal/app/solve"
	"gridplan/internal/domain/grid"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	event := ports.SessionEvent{Type: "replanned", Step: 2, OccurredAt: now, Payload: map[string]any{"replans": 1}}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name: "solve",
			payload: solve.Response{
				RunID:   "r1",
				Solved:  true,
				Actions: []string{"NoOp"},
				Joint:   []grid.JointAction{{grid.NoOpAction()}},
			},
			want:    []string{"run_id", "level_name", "solved", "actions", "sub_levels", "duration_ns"},
			notWant: []string{"RunID", "Joint", "SubLevels"},
		},
		{
			name:    "replay",
			payload: replay.Response{RunID: "r1", Steps: []replay.Step{{Index: 0, Action: "NoOp"}}, Events: []ports.SessionEvent{event}},
			want:    []string{"run_id", "steps", "goals_left", "occurred_at", "final"},
			notWant: []string{"RunID", "GoalsLeft", "OccurredAt"},
		},
		{
			name:    "run",
			payload: toRunView(ports.RunRecord{ID: "r1", Duration: time.Second, CreatedAt: now}),
			want:    []string{"level_name", "duration_ms", "created_at", "actions"},
			notWant: []string{"LevelName", "Duration", "level_text"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			s := string(b)
			for _, key := range tc.want {
				if !containsKey(s, key) {
					t.Fatalf("expected key %q in %s", key, s)
				}
			}
			for _, key := range tc.notWant {
				if containsKey(s, key) {
					t.Fatalf("unexpected key %q in %s", key, s)
				}
			}
		})
	}
}

func containsKey(s, key string) bool {
	return strings.Contains(s, `"`+key+`":`)
}
