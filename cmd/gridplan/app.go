package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"gridplan/internal/adapter/metrics/fanout"
	"gridplan/internal/adapter/metrics/inmemory"
	"gridplan/internal/adapter/metrics/prom"
	gormrepo "gridplan/internal/adapter/repo/gorm"
	"gridplan/internal/adapter/repo/memory"
	"gridplan/internal/app/coordinator"
	"gridplan/internal/app/ports"
	"gridplan/internal/app/replay"
	"gridplan/internal/app/solve"
	"gridplan/internal/config"
	"gridplan/internal/domain/world"
)

// app holds the wiring shared by every command.
type app struct {
	cfg     config.Config
	log     hclog.Logger
	runs    ports.RunRepository
	events  ports.SessionEventRepository
	kpi     *inmemory.Recorder
	prom    *prom.Recorder
	metrics ports.SolveMetrics
}

func newApp(ctx context.Context, cfg config.Config, log hclog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, kpi: inmemory.NewRecorder()}
	if err := a.buildRepos(ctx); err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		a.prom = prom.NewRecorder("gridplan")
		a.metrics = fanout.New(a.kpi, a.prom)
	} else {
		a.metrics = a.kpi
	}
	return a, nil
}

func (a *app) buildRepos(ctx context.Context) error {
	if a.cfg.DB.DSN == "" {
		store := memory.NewStore()
		a.runs = memory.NewRunRepo(store)
		a.events = memory.NewEventRepo(store)
		return nil
	}
	db, err := gormrepo.OpenPostgres(a.cfg.DB.DSN, gormrepo.PoolOptions{
		MaxOpenConns:    a.cfg.DB.MaxOpenConns,
		MaxIdleConns:    a.cfg.DB.MaxIdleConns,
		ConnMaxLifetime: a.cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	if a.cfg.DB.Migrate {
		if err := gormrepo.ApplyMigrations(ctx, db, gormrepo.Migrations()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	a.runs = gormrepo.NewRunRepo(db)
	a.events = gormrepo.NewEventRepo(db)
	a.log.Info("run archive on postgres")
	return nil
}

func (a *app) solveUseCase() solve.UseCase {
	return solve.UseCase{
		Solver: timeoutSolver{
			inner:   coordinator.New(a.cfg.AgentConfig(), a.log),
			timeout: a.cfg.Search.Timeout,
		},
		Runs:     a.runs,
		Metrics:  a.metrics,
		Strategy: a.cfg.Search.Strategy,
		Log:      a.log.Named("solve"),
	}
}

func (a *app) replayUseCase() replay.UseCase {
	return replay.UseCase{Runs: a.runs, Events: a.events}
}

// serveMetrics exposes the Prometheus registry until ctx ends. It is a
// no-op when metrics are disabled.
func (a *app) serveMetrics(ctx context.Context) {
	if a.prom == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.prom.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.log.Info("metrics listening", "addr", a.cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
}

// timeoutSolver bounds every solve by the configured search timeout.
type timeoutSolver struct {
	inner   solve.Solver
	timeout time.Duration
}

func (s timeoutSolver) Solve(ctx context.Context, root *world.State) (coordinator.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.inner.Solve(ctx, root)
}
