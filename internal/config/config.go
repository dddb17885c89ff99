package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"gridplan/internal/app/agent"
	"gridplan/internal/app/session"
	"gridplan/internal/app/strategy"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Client  ClientConfig  `yaml:"client"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
}

type SearchConfig struct {
	Strategy     string        `yaml:"strategy"`
	Weight       int           `yaml:"weight"`
	Seed         int64         `yaml:"seed"`
	MaxDepth     int           `yaml:"max_depth"`
	HelperBudget int           `yaml:"helper_budget"`
	MaxFixups    int           `yaml:"max_fixups"`
	MaxExplored  int           `yaml:"max_explored"`
	Timeout      time.Duration `yaml:"timeout"`
	Workers      int           `yaml:"workers"`
}

type ClientConfig struct {
	Name       string `yaml:"name"`
	OnFailure  string `yaml:"on_failure"`
	MaxReplans int    `yaml:"max_replans"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Migrate         bool          `yaml:"migrate"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Default() Config {
	d := agent.DefaultConfig()
	return Config{
		Search: SearchConfig{
			Strategy:     string(strategy.KindGreedy),
			Weight:       strategy.DefaultFactory().Weight,
			Seed:         d.Seed,
			MaxDepth:     d.MaxDepth,
			HelperBudget: d.HelperBudget,
			MaxFixups:    d.MaxFixups,
			Timeout:      5 * time.Minute,
			Workers:      4,
		},
		Client: ClientConfig{
			Name:       "gridplan",
			OnFailure:  string(session.Abort),
			MaxReplans: 3,
		},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: ":9090"},
		DB:      DBConfig{Migrate: true},
		Log:     LogConfig{Level: "info"},
	}
}

// Load starts from Default, overlays the YAML file at path when one is
// given, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := strategy.ParseKind(c.Search.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Search.MaxDepth < 0 || c.Search.HelperBudget < 0 || c.Search.MaxFixups < 0 || c.Search.MaxExplored < 0 {
		errs = append(errs, errors.New("search limits must not be negative"))
	}
	if c.Search.Workers < 1 {
		errs = append(errs, errors.New("search.workers must be at least 1"))
	}
	switch session.FailureMode(c.Client.OnFailure) {
	case session.Abort, session.Replan:
	default:
		errs = append(errs, fmt.Errorf("client.on_failure must be %q or %q, got %q", session.Abort, session.Replan, c.Client.OnFailure))
	}
	if c.Client.MaxReplans < 0 {
		errs = append(errs, errors.New("client.max_replans must not be negative"))
	}
	if strings.TrimSpace(c.Client.Name) == "" {
		errs = append(errs, errors.New("client.name is required"))
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AgentConfig maps the search section onto planner settings.
func (c Config) AgentConfig() agent.Config {
	kind, err := strategy.ParseKind(c.Search.Strategy)
	if err != nil {
		kind = strategy.KindGreedy
	}
	return agent.Config{
		Strategy:     strategy.Factory{Kind: kind, Weight: c.Search.Weight},
		Seed:         c.Search.Seed,
		MaxDepth:     c.Search.MaxDepth,
		HelperBudget: c.Search.HelperBudget,
		MaxFixups:    c.Search.MaxFixups,
		MaxExplored:  c.Search.MaxExplored,
	}
}

func (c Config) SessionPolicy() session.Policy {
	return session.Policy{
		OnFailure:  session.FailureMode(c.Client.OnFailure),
		MaxReplans: c.Client.MaxReplans,
	}
}
