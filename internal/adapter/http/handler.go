package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"gridplan/internal/app/coordinator"
	"gridplan/internal/app/ports"
	"gridplan/internal/app/replay"
	"gridplan/internal/app/solve"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const defaultListLimit = 20

type Handler struct {
	SolveUC  solve.UseCase
	ReplayUC replay.UseCase
	Runs     ports.RunRepository
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.POST("/solve", h.solve)
	api.GET("/runs", h.listRuns)
	api.GET("/runs/:id", h.getRun)
	api.GET("/runs/:id/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
	s.GET("/healthz", h.healthz)
}

type solveRequest struct {
	Level string `json:"level"`
}

type runView struct {
	ID         string    `json:"id"`
	LevelName  string    `json:"level_name"`
	Domain     string    `json:"domain"`
	Status     string    `json:"status"`
	Strategy   string    `json:"strategy,omitempty"`
	Actions    []string  `json:"actions"`
	Length     int       `json:"length"`
	Explored   int       `json:"explored"`
	Generated  int       `json:"generated"`
	Helpers    int       `json:"helpers"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toRunView(r ports.RunRecord) runView {
	actions := r.Actions
	if actions == nil {
		actions = []string{}
	}
	return runView{
		ID:         r.ID,
		LevelName:  r.LevelName,
		Domain:     r.Domain,
		Status:     string(r.Status),
		Strategy:   r.Strategy,
		Actions:    actions,
		Length:     r.Length,
		Explored:   r.Explored,
		Generated:  r.Generated,
		Helpers:    r.Helpers,
		DurationMS: r.Duration.Milliseconds(),
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
	}
}

// solve accepts either a JSON body {"level": "..."} or the raw level text.
func (h Handler) solve(c context.Context, ctx *app.RequestContext) {
	level := string(ctx.Request.Body())
	if strings.HasPrefix(strings.TrimSpace(level), "{") {
		var body solveRequest
		if err := decodeJSON(ctx, &body); err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
			return
		}
		level = body.Level
	}

	resp, err := h.SolveUC.Execute(c, solve.Request{LevelText: level})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) listRuns(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "run repository not configured")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	if limit <= 0 {
		limit = defaultListLimit
	}
	runs, err := h.Runs.List(c, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := make([]runView, 0, len(runs))
	for _, r := range runs {
		out = append(out, toRunView(r))
	}
	ctx.JSON(consts.StatusOK, map[string]any{"runs": out})
}

func (h Handler) getRun(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "run repository not configured")
		return
	}
	run, err := h.Runs.GetByID(c, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, toRunView(run))
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		RunID: ctx.Param("id"),
		Limit: limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, solve.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, coordinator.ErrUnsolvable):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "unsolvable", err.Error())
	case errors.Is(err, replay.ErrCorruptRun):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "corrupt_run", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "solve_timeout", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
