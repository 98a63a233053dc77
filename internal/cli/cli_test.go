package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/specialistvlad/pumpgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	defaults := app.Config{
		GraphPath: "graph.hcl",
		Dedup:     "message",
		Order:     "strict",
		LogFormat: "json",
		LogLevel:  "info",
	}
	with := func(mod func(*app.Config)) app.Config {
		cfg := defaults
		mod(&cfg)
		return cfg
	}

	tests := []struct {
		name string
		args []string
		want app.Config
	}{
		{name: "positional path", args: []string{"graph.hcl"}, want: defaults},
		{name: "graph flag", args: []string{"-graph", "graph.hcl"}, want: defaults},
		{name: "shorthand wins over positional", args: []string{"-g", "graph.hcl", "other.hcl"}, want: defaults},
		{
			name: "repeatable flags",
			args: []string{"-set", "x=1", "-set", `name="a"`, "-output", "y", "-output", "z", "graph.hcl"},
			want: with(func(c *app.Config) {
				c.Sets = []string{"x=1", `name="a"`}
				c.Outputs = []string{"y", "z"}
			}),
		},
		{
			name: "watch mode",
			args: []string{"-watch", "250ms", "-ticks", "4", "-async", "-dedup", "NODE", "-order", "lenient", "-env-prefix", "APP_", "graph.hcl"},
			want: with(func(c *app.Config) {
				c.EnvPrefix = "APP_"
				c.Watch = 250 * time.Millisecond
				c.Ticks = 4
				c.Async = true
				c.Dedup = "node"
				c.Order = "lenient"
			}),
		},
		{
			name: "what-if and logging",
			args: []string{"-what-if", "-log-format", "TEXT", "-log-level", "debug", "-healthcheck-port", "8080", "graph.hcl"},
			want: with(func(c *app.Config) {
				c.WhatIf = true
				c.LogFormat = "text"
				c.LogLevel = "debug"
				c.HealthcheckPort = 8080
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, exit, err := Parse(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestParse_ExitsCleanly(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer
		cfg, exit, err := Parse(args, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope", "g.hcl"}, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "g.hcl"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "g.hcl"}, wantMsg: "invalid log-level"},
		{name: "bad dedup", args: []string{"-dedup", "stack", "g.hcl"}, wantMsg: "invalid dedup policy"},
		{name: "ticks without watch", args: []string{"-ticks", "3", "g.hcl"}, wantMsg: "ticks requires a watch interval"},
		{name: "bad duration", args: []string{"-watch", "soon", "g.hcl"}, wantMsg: "invalid value"},
		{name: "dot with what-if", args: []string{"-dot", "-what-if", "g.hcl"}, wantMsg: "dot cannot be combined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, exit, err := Parse(tt.args, &bytes.Buffer{})
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}
