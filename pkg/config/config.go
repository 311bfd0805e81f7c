// Package config loads the planner configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
	"github.com/dd0wney/tamp-planner/pkg/policy"
)

// Config is the complete planner configuration.
type Config struct {
	Graph     GraphConfig     `yaml:"graph"`
	Planner   PlannerConfig   `yaml:"planner"`
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphConfig describes the navigation map.
type GraphConfig struct {
	Nodes []NodeConfig `yaml:"nodes" validate:"required,min=1,dive"`
	Edges []EdgeConfig `yaml:"edges" validate:"dive"`
}

// NodeConfig is one location.
type NodeConfig struct {
	ID   int    `yaml:"id" validate:"gte=0"`
	Name string `yaml:"name"`
}

// EdgeConfig is one undirected edge.
type EdgeConfig struct {
	From   int `yaml:"from" validate:"gte=0"`
	To     int `yaml:"to" validate:"gte=0"`
	Weight int `yaml:"weight" validate:"gt=0"`
}

// PlannerConfig controls the planning loop.
type PlannerConfig struct {
	Policy      string        `yaml:"policy" validate:"required"`
	TickPeriod  time.Duration `yaml:"tick_period" validate:"gt=0"`
	InitialNode int           `yaml:"initial_node" validate:"gte=0"`
	// RewardStep is the time unit of the evaluation discount exponent.
	RewardStep time.Duration `yaml:"reward_step" validate:"gt=0"`
	// MaxExecutions stops the loop after that many executions; 0 runs
	// until cancelled.
	MaxExecutions    int `yaml:"max_executions" validate:"gte=0"`
	BacklogThreshold int `yaml:"backlog_threshold" validate:"gte=0"`
	// ResultsDir receives the reward trace and executed ids on shutdown.
	ResultsDir string `yaml:"results_dir"`
}

// TransportConfig holds socket addresses. An empty address disables the
// corresponding endpoint.
type TransportConfig struct {
	FeedKind          string        `yaml:"feed_kind" validate:"oneof=nng zmq"`
	FeedAddr          string        `yaml:"feed_addr"`
	PublishAddr       string        `yaml:"publish_addr"`
	ActuatorAddr      string        `yaml:"actuator_addr"`
	ActuatorWarnEvery time.Duration `yaml:"actuator_warn_every" validate:"gte=0"`
	Compress          bool          `yaml:"compress"`
}

// ServerConfig is the metrics and health listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// StallAfter is how long without a tick before liveness fails.
	StallAfter time.Duration `yaml:"stall_after" validate:"gte=0"`
}

// LoggingConfig sets the log level; LOG_LEVEL overrides it.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
}

// Default returns the built-in configuration: the care home map with the
// actor at the charging station.
func Default() *Config {
	return &Config{
		Graph: DefaultGraph(),
		Planner: PlannerConfig{
			Policy:           string(policy.FirstComeFirstServe),
			TickPeriod:       time.Second,
			InitialNode:      int(Charge),
			RewardStep:       2 * time.Second,
			BacklogThreshold: 50,
		},
		Transport: TransportConfig{
			FeedKind:          "nng",
			FeedAddr:          "tcp://127.0.0.1:40899",
			PublishAddr:       "tcp://127.0.0.1:40900",
			ActuatorWarnEvery: time.Minute,
		},
		Server: ServerConfig{
			Addr:       ":9090",
			StallAfter: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("config.Load", fmt.Errorf("read %s: %w", path, err))
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Listing
// graph nodes replaces the default map entirely.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, configError("config.Parse", fmt.Errorf("decode yaml: %w", err))
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Validate checks field constraints and that the map, policy and initial
// node fit together. All failures are configuration errors.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return configError("config.Validate", err)
	}

	chk := newChecker("config")
	chk.custom("planner.policy", func() error {
		_, err := policy.ParseKind(c.Planner.Policy)
		return err
	})
	chk.custom("graph", func() error {
		g, err := c.BuildGraph()
		if err != nil {
			return err
		}
		if !g.Has(graph.Node(c.Planner.InitialNode)) {
			return fmt.Errorf("initial node %d is not on the map", c.Planner.InitialNode)
		}
		return nil
	})
	chk.when(c.Transport.FeedAddr != "", func(chk *checker) {
		chk.scheme("transport.feed_addr", c.Transport.FeedAddr)
	})
	chk.when(c.Transport.PublishAddr != "", func(chk *checker) {
		chk.scheme("transport.publish_addr", c.Transport.PublishAddr)
	})
	chk.when(c.Transport.ActuatorAddr != "", func(chk *checker) {
		chk.scheme("transport.actuator_addr", c.Transport.ActuatorAddr)
	})

	if err := chk.err(); err != nil {
		return configError("config.Validate", err)
	}
	return nil
}

// BuildGraph constructs the navigation model from the graph section.
func (c *Config) BuildGraph() (*graph.Model, error) {
	nodes := make([]graph.NodeSpec, len(c.Graph.Nodes))
	for i, n := range c.Graph.Nodes {
		nodes[i] = graph.NodeSpec{ID: graph.Node(n.ID), Name: n.Name}
	}
	edges := make([]graph.Edge, len(c.Graph.Edges))
	for i, e := range c.Graph.Edges {
		edges[i] = graph.Edge{From: graph.Node(e.From), To: graph.Node(e.To), Weight: e.Weight}
	}
	return graph.New(nodes, edges)
}

// PolicyKind returns the configured policy.
func (c *Config) PolicyKind() policy.Kind {
	k, err := policy.ParseKind(c.Planner.Policy)
	if err != nil {
		return policy.FirstComeFirstServe
	}
	return k
}

// StartNode returns the node the actor starts on.
func (c *Config) StartNode() graph.Node {
	return graph.Node(c.Planner.InitialNode)
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

func configError(op string, err error) error {
	return planerr.New(op).Cause(fmt.Errorf("%w: %w", planerr.ErrConfiguration, err)).Err()
}
