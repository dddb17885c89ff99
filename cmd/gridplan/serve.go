package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "gridplan/internal/adapter/http"
)

type ServeCmd struct {
	Addr string `help:"Listen address; overrides http.addr."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.HTTP.Addr = c.Addr
	}
	log := newLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.serveMetrics(ctx)

	h := httpadapter.Handler{
		SolveUC:  a.solveUseCase(),
		ReplayUC: a.replayUseCase(),
		Runs:     a.runs,
		KPI:      a.kpi,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTP.Addr))
	h.RegisterRoutes(s)

	log.Info("gridplan server listening", "addr", cfg.HTTP.Addr, "strategy", cfg.Search.Strategy)
	s.Spin()
	return nil
}
