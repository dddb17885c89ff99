package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/hashicorp/go-hclog"

	"gridplan/internal/app/heuristic"
	"gridplan/internal/app/strategy"
	"gridplan/internal/domain/grid"
	"gridplan/internal/domain/world"
)

var (
	ErrNoPlan        = errors.New("no plan found")
	ErrNoRelocation  = fmt.Errorf("%w: no cell to relocate a blocking object", ErrNoPlan)
	ErrDepthExceeded = fmt.Errorf("%w: helper recursion limit reached", ErrNoPlan)
)

// Config bounds the planner. Zero values fall back to DefaultConfig.
type Config struct {
	Strategy     strategy.Factory
	Seed         int64
	MaxDepth     int
	HelperBudget int
	MaxFixups    int
	// MaxExplored caps every single search; zero means unbounded.
	MaxExplored int
}

func DefaultConfig() Config {
	return Config{
		Strategy:     strategy.DefaultFactory(),
		Seed:         1,
		MaxDepth:     6,
		HelperBudget: 64,
		MaxFixups:    16,
	}
}

type Stats struct {
	Searches  int
	Explored  int
	Generated int
	Helpers   int
	Conflicts int
}

// Planner runs single-agent searches against a committed timeline. It is
// not safe for concurrent use: the RNG and the helper budget are shared
// by every nested search of one solve.
type Planner struct {
	cfg     Config
	ctx     context.Context
	rng     *rand.Rand
	log     hclog.Logger
	helpers int
	stats   Stats
}

func NewPlanner(cfg Config, logger hclog.Logger) *Planner {
	def := DefaultConfig()
	if cfg.Strategy.Kind == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.HelperBudget <= 0 {
		cfg.HelperBudget = def.HelperBudget
	}
	if cfg.MaxFixups <= 0 {
		cfg.MaxFixups = def.MaxFixups
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Planner{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		log: logger.Named("planner"),
	}
}

// WithContext makes every search of p give up with ctx's error once ctx
// is done.
func (p *Planner) WithContext(ctx context.Context) *Planner {
	p.ctx = ctx
	return p
}

func (p *Planner) interrupted() error {
	if p.ctx == nil {
		return nil
	}
	return p.ctx.Err()
}

func (p *Planner) Stats() Stats {
	return p.stats
}

// NewStrategy builds a strategy for agent that is guided towards target,
// or towards every goal of the agent's color when target is nil.
func (p *Planner) NewStrategy(start *world.State, agent int, target *grid.Position) strategy.Strategy {
	return p.cfg.Strategy.New(start, heuristic.Options{
		Color:  start.AgentColor(agent),
		Agent:  agent,
		Target: target,
	})
}

func (p *Planner) helperStrategy(start *world.State, agent int, target *grid.Position) strategy.Strategy {
	return p.cfg.Strategy.Weighted().New(start, heuristic.Options{
		Color:  start.AgentColor(agent),
		Agent:  agent,
		Target: target,
	})
}

func (p *Planner) exhausted(strat strategy.Strategy) bool {
	return p.cfg.MaxExplored > 0 && strat.CountExplored() >= p.cfg.MaxExplored
}

func (p *Planner) finish(strat strategy.Strategy, agent int, found bool) {
	p.stats.Searches++
	p.stats.Explored += strat.CountExplored()
	p.stats.Generated += strat.CountExplored() + strat.CountFrontier()
	p.log.Debug("search finished", "agent", agent, "strategy", strat.String(), "found", found, "status", strat.Status())
}

// PlanToActions returns, per agent, the last time index at which the
// agent performs a non-NoOp action, or 0 when it never acts.
func PlanToActions(plan world.Plan) []int {
	if len(plan) == 0 {
		return nil
	}
	out := make([]int, plan[0].NumAgents())
	for i := 1; i < len(plan); i++ {
		for agent, a := range plan[i].JointAction() {
			if !a.IsNoOp() {
				out[agent] = i
			}
		}
	}
	return out
}

// agentActions lists agent's non-NoOp actions in plan after index from.
func agentActions(plan world.Plan, agent, from int) []grid.Action {
	var out []grid.Action
	for i := from + 1; i < len(plan); i++ {
		if a := plan[i].JointAction()[agent]; !a.IsNoOp() {
			out = append(out, a)
		}
	}
	return out
}

// replaySuffix re-applies the committed steps after leaf's time index.
func replaySuffix(leaf *world.State, committed world.Plan, agent int) (world.Plan, bool) {
	var out world.Plan
	cur := leaf
	for i := leaf.G() + 1; i < len(committed); i++ {
		next, err := cur.TryApply(committed[i].JointAction().With(agent, grid.NoOpAction()))
		if err != nil {
			return nil, false
		}
		out = append(out, next)
		cur = next
	}
	return out, true
}

// committedNext applies the committed step following leaf. A nil state
// with ok means the commitments ran out.
func committedNext(leaf *world.State, committed world.Plan, agent int) (*world.State, bool) {
	i := leaf.G() + 1
	if i >= len(committed) {
		return nil, true
	}
	next, err := leaf.TryApply(committed[i].JointAction().With(agent, grid.NoOpAction()))
	if err != nil {
		return nil, false
	}
	return next, true
}
