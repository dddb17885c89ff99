package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gridplan/internal/adapter/protocol"
	"gridplan/internal/app/session"
)

type ClientCmd struct{}

func (c *ClientCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.serveMetrics(ctx)

	uc := session.UseCase{
		Channel: protocol.NewChannel(os.Stdin, os.Stdout),
		Solve:   a.solveUseCase(),
		Events:  a.events,
		Metrics: a.metrics,
		Policy:  cfg.SessionPolicy(),
		Name:    cfg.Client.Name,
		Log:     log,
	}
	res, err := uc.Run(ctx)
	if err != nil {
		log.Error("session failed", "steps", res.Steps, "replans", res.Replans, "error", err)
		return err
	}
	log.Info("session finished", "steps", res.Steps, "replans", res.Replans, "solved", res.Solved)
	return nil
}
