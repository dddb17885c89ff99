package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gridplan/internal/adapter/metrics/inmemory"
	"gridplan/internal/adapter/repo/memory"
	"gridplan/internal/app/agent"
	"gridplan/internal/app/coordinator"
	"gridplan/internal/app/ports"
	"gridplan/internal/app/replay"
	"gridplan/internal/app/solve"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

const pushLevel = "#domain\nhospital\n#levelname\npush\n#colors\nred: 0, A\n#initial\n+++++\n+0A +\n+++++\n#goal\n+++++\n+  A+\n+++++\n#end\n"

func newTestHandler() (Handler, *inmemory.Recorder) {
	store := memory.NewStore()
	runs := memory.NewRunRepo(store)
	kpi := inmemory.NewRecorder()
	n := 0
	return Handler{
		SolveUC: solve.UseCase{
			Solver:  coordinator.New(agent.DefaultConfig(), nil),
			Runs:    runs,
			Metrics: kpi,
			NewID: func() string {
				n++
				return fmt.Sprintf("run-%d", n)
			},
		},
		ReplayUC: replay.UseCase{Runs: runs, Events: memory.NewEventRepo(store)},
		Runs:     runs,
		KPI:      kpi,
	}, kpi
}

func TestSolve_JSONBody(t *testing.T) {
	h, kpi := newTestHandler()
	body, _ := json.Marshal(map[string]string{"level": pushLevel})
	ctx := &app.RequestContext{}
	ctx.Request.SetBody(body)

	h.solve(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var resp map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := resp["run_id"], "run-1"; got != want {
		t.Fatalf("run_id mismatch: got=%v want=%v", got, want)
	}
	if got, want := resp["solved"], true; got != want {
		t.Fatalf("solved mismatch: got=%v want=%v", got, want)
	}
	if _, ok := resp["Joint"]; ok {
		t.Fatalf("internal joint actions must not be serialized")
	}
	if kpi.Snapshot().SolveSuccess != 1 {
		t.Fatalf("expected one recorded solve")
	}
}

func TestSolve_RawLevelText(t *testing.T) {
	h, _ := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(pushLevel))

	h.solve(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestSolve_MalformedLevel(t *testing.T) {
	h, _ := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"level":"#domain\nhospital\n"}`))

	h.solve(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestSolve_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"level":`))

	h.solve(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusBadRequest, "invalid_json")
}

func TestRunsAndReplay_AfterSolve(t *testing.T) {
	h, _ := newTestHandler()
	solveCtx := &app.RequestContext{}
	solveCtx.Request.SetBody([]byte(pushLevel))
	h.solve(context.Background(), solveCtx)

	getCtx := &app.RequestContext{}
	getCtx.Params = param.Params{{Key: "id", Value: "run-1"}}
	h.getRun(context.Background(), getCtx)
	if got, want := getCtx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("get status mismatch: got=%d want=%d", got, want)
	}
	var run map[string]any
	if err := json.Unmarshal(getCtx.Response.Body(), &run); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if got, want := run["level_name"], "push"; got != want {
		t.Fatalf("level_name mismatch: got=%v want=%v", got, want)
	}

	replayCtx := &app.RequestContext{}
	replayCtx.Params = param.Params{{Key: "id", Value: "run-1"}}
	h.replay(context.Background(), replayCtx)
	if got, want := replayCtx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("replay status mismatch: got=%d want=%d", got, want)
	}
	var rep map[string]any
	if err := json.Unmarshal(replayCtx.Response.Body(), &rep); err != nil {
		t.Fatalf("unmarshal replay: %v", err)
	}
	if got, want := rep["solved"], true; got != want {
		t.Fatalf("replay solved mismatch: got=%v want=%v", got, want)
	}

	listCtx := &app.RequestContext{}
	h.listRuns(context.Background(), listCtx)
	var list map[string][]map[string]any
	if err := json.Unmarshal(listCtx.Response.Body(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list["runs"]) != 1 {
		t.Fatalf("expected 1 run, got %d", len(list["runs"]))
	}
}

func TestGetRun_NotFound(t *testing.T) {
	h, _ := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "missing"}}

	h.getRun(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusNotFound, "not_found")
}

func TestKPI_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusNotFound, "not_configured")
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: empty", solve.ErrInvalidRequest), consts.StatusBadRequest, "bad_request"},
		{replay.ErrInvalidRequest, consts.StatusBadRequest, "bad_request"},
		{ports.ErrNotFound, consts.StatusNotFound, "not_found"},
		{ports.ErrConflict, consts.StatusConflict, "conflict"},
		{fmt.Errorf("sub-level 0: %w", coordinator.ErrUnsolvable), consts.StatusUnprocessableEntity, "unsolvable"},
		{replay.ErrCorruptRun, consts.StatusUnprocessableEntity, "corrupt_run"},
		{context.DeadlineExceeded, consts.StatusGatewayTimeout, "solve_timeout"},
		{errors.New("boom"), consts.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		writeError(ctx, tc.err)
		assertErrorCode(t, ctx, tc.status, tc.code)
	}
}

func assertErrorCode(t *testing.T, ctx *app.RequestContext, status int, code string) {
	t.Helper()
	if got := ctx.Response.StatusCode(); got != status {
		t.Fatalf("status mismatch: got=%d want=%d", got, status)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got := body["error"]["code"]; got != code {
		t.Fatalf("error code mismatch: got=%q want=%q", got, code)
	}
}
