package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"gridplan/internal/app/solve"
)

var errUnsolved = errors.New("some levels were not solved")

type SolveCmd struct {
	Files     []string `arg:"" name:"files" help:"Level files to solve."`
	PrintPlan bool     `name:"print-plan" help:"Print each plan one joint action per line."`
}

func (c *SolveCmd) Run(cli *CLI) error {
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
	return runBatch(ctx, a.solveUseCase(), c.Files, cfg.Search.Workers, c.PrintPlan, os.Stdout)
}

type batchResult struct {
	file string
	resp solve.Response
	err  error
}

// runBatch solves files with at most workers in flight and reports them
// in input order.
func runBatch(ctx context.Context, uc solve.UseCase, files []string, workers int, printPlan bool, out io.Writer) error {
	results := make([]batchResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, file := range files {
		g.Go(func() error {
			results[i].file = file
			text, err := os.ReadFile(file)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].resp, results[i].err = uc.Execute(gctx, solve.Request{LevelText: string(text)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAILED: %v\n", r.file, r.err)
			continue
		}
		fmt.Fprintf(out, "%s: solved %s in %d steps (explored %d, run %s)\n",
			r.file, r.resp.LevelName, r.resp.Length, r.resp.Explored, r.resp.RunID)
		if printPlan {
			fmt.Fprintln(out, strings.Join(r.resp.Actions, "\n"))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errUnsolved, failed, len(files))
	}
	return nil
}
