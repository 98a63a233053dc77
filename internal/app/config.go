package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/pumpgrid/internal/graph"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl file or directory

	Sets    []string // name=<hcl expression>, injected after the manifests
	Outputs []string // names marked output-dirty before the first pump
	WhatIf  bool
	DOT     bool // print the rebuilt graph in Graphviz DOT instead of pumping
	Async   bool
	Watch   time.Duration
	Ticks   int

	EnvPrefix string // when set, variables with this prefix are exposed as `env`

	Dedup string
	Order string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

var dedupPolicies = map[string]graph.DedupPolicy{
	"":             graph.DedupByMessage,
	"message":      graph.DedupByMessage,
	"node":         graph.DedupByNode,
	"node+message": graph.DedupByNodeAndMessage,
}

var orderPolicies = map[string]graph.OrderPolicy{
	"":        graph.OrderStrict,
	"strict":  graph.OrderStrict,
	"lenient": graph.OrderLenient,
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if _, ok := dedupPolicies[cfg.Dedup]; !ok {
		return nil, fmt.Errorf("invalid dedup policy %q: must be 'message', 'node' or 'node+message'", cfg.Dedup)
	}
	if _, ok := orderPolicies[cfg.Order]; !ok {
		return nil, fmt.Errorf("invalid order policy %q: must be 'strict' or 'lenient'", cfg.Order)
	}
	if cfg.Watch < 0 {
		return nil, fmt.Errorf("invalid watch interval %s: must not be negative", cfg.Watch)
	}
	if cfg.Ticks < 0 {
		return nil, fmt.Errorf("invalid tick count %d: must not be negative", cfg.Ticks)
	}
	if cfg.Ticks > 0 && cfg.Watch == 0 {
		return nil, errors.New("ticks requires a watch interval")
	}
	if cfg.WhatIf && cfg.Watch > 0 {
		return nil, errors.New("what-if and watch cannot be combined")
	}
	if cfg.DOT && (cfg.WhatIf || cfg.Watch > 0) {
		return nil, errors.New("dot cannot be combined with what-if or watch")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}

func (c *Config) graphOptions() []graph.Option {
	return []graph.Option{
		graph.WithDedupPolicy(dedupPolicies[c.Dedup]),
		graph.WithOrderPolicy(orderPolicies[c.Order]),
	}
}
