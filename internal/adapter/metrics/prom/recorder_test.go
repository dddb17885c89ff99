package prom

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecorderExportsCounters(t *testing.T) {
	r := NewRecorder("")
	r.RecordSolved(7, 40, 5*time.Millisecond)
	r.RecordSolved(3, 10, 2*time.Millisecond)
	r.RecordFailure("unsolvable")
	r.RecordReplan()

	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				name := mf.GetName()
				for _, lp := range m.GetLabel() {
					name += "/" + lp.GetValue()
				}
				values[name] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	want := map[string]float64{
		"gridplan_solves_total/solved":     2,
		"gridplan_solves_total/unsolvable": 1,
		"gridplan_plan_steps_total":        10,
		"gridplan_states_explored_total":   50,
		"gridplan_replans_total":           1,
		"gridplan_solve_duration_seconds":  2,
	}
	for name, v := range want {
		if values[name] != v {
			t.Fatalf("%s=%v want=%v", name, values[name], v)
		}
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	r := NewRecorder("test")
	r.RecordReplan()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(string(body), "test_replans_total 1") {
		t.Fatalf("missing counter in body:\n%s", body)
	}
}
