// Command gridplan solves multi-agent box transport levels.
//
// Usage:
//
//	gridplan                       # client mode, speaks the server protocol on stdio
//	gridplan solve levels/*.lvl    # offline batch solve
//	gridplan serve --config gridplan.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-hclog"

	"gridplan/internal/config"
)

type CLI struct {
	Client  ClientCmd  `cmd:"" default:"1" help:"Solve the level sent by the environment server over stdin/stdout."`
	Solve   SolveCmd   `cmd:"" help:"Solve level files offline."`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP solve service."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `help:"Log level (trace, debug, info, warn, error)."`
	Strategy string `help:"Search strategy (bfs, dfs, astar, wastar, greedy)."`
	Seed     int64  `help:"Seed for successor shuffling; 0 keeps the configured seed."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("gridplan version %s\n", version())
	return nil
}

func version() string {
	v := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			v = info.Main.Version
		}
	}
	return v
}

// loadConfig resolves the file, .env and environment layers, then the
// command line flags on top.
func (cli *CLI) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(cli.Config); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return config.Config{}, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Strategy != "" {
		cfg.Search.Strategy = cli.Strategy
	}
	if cli.Seed != 0 {
		cfg.Search.Seed = cli.Seed
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.LogConfig) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "gridplan",
		Level:      hclog.LevelFromString(cfg.Level),
		Output:     os.Stderr,
		JSONFormat: cfg.JSON,
	})
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("gridplan"),
		kong.Description("Multi-agent grid transport planner"),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
