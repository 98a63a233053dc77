package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/ctyconv"
	"github.com/specialistvlad/pumpgrid/internal/graph"
)

// Run executes the main application logic based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if err := a.LoadManifests(ctx); err != nil {
		return err
	}
	sets, err := a.assignments()
	if err != nil {
		return err
	}

	if a.config.DOT {
		return a.graph.WriteDOT(a.outW)
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	switch {
	case a.config.WhatIf:
		err = a.runWhatIf(ctx, sets)
	case a.config.Watch > 0:
		err = a.runWatch(ctx, sets)
	default:
		err = a.runOnce(ctx, sets)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) runOnce(ctx context.Context, sets map[string]any) error {
	a.prime()
	a.graph.Inject(sets)
	a.graph.MarkOutput(a.config.Outputs...)

	a.logger.Info("🚀 Pumping graph...")
	if err := a.graph.Pump(ctx, graph.PumpAsync(a.config.Async)); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Pump finished.")
	a.publish()
	return a.printScope(a.graph.Scope())
}

// runWhatIf settles the manifests first, then evaluates the `-set` values
// and requested outputs without keeping their effect.
func (a *App) runWhatIf(ctx context.Context, sets map[string]any) error {
	a.prime()
	if err := a.graph.Pump(ctx, graph.PumpAsync(a.config.Async)); err != nil {
		return fmt.Errorf("baseline execution failed: %w", err)
	}
	a.publish()

	a.logger.Info("🔮 Evaluating what-if...", "sets", len(sets), "outputs", a.config.Outputs)
	scope, err := a.graph.PumpRestore(ctx, a.config.Outputs, a.config.Async, sets)
	if err != nil {
		return fmt.Errorf("what-if execution failed: %w", err)
	}
	return a.printScope(scope)
}

// runWatch advances the graph one step per tick until the tick budget is
// spent or ctx is cancelled. Tick errors are logged and the loop goes on.
func (a *App) runWatch(ctx context.Context, sets map[string]any) error {
	a.prime()
	a.graph.Inject(sets)
	a.graph.MarkOutput(a.config.Outputs...)

	ticker := time.NewTicker(a.config.Watch)
	defer ticker.Stop()

	a.logger.Info("👀 Watching graph...", "interval", a.config.Watch, "ticks", a.config.Ticks)
	for tick := 1; a.config.Ticks == 0 || tick <= a.config.Ticks; tick++ {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch loop interrupted.", "ticks", tick-1)
			return a.printScope(a.graph.Scope())
		case <-ticker.C:
		}

		state, err := a.graph.PumpTick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			a.logger.Error("Tick failed.", "tick", tick, "error", err)
		} else {
			a.logger.Debug("Tick finished.", "tick", tick, "state", state)
		}
		if state == graph.StateDone {
			a.publish()
		}
	}
	return a.printScope(a.graph.Scope())
}

func (a *App) printScope(scope map[string]any) error {
	data, err := ctyconv.ScopeJSON(scope)
	if err != nil {
		return fmt.Errorf("failed to render scope: %w", err)
	}
	_, err = fmt.Fprintln(a.outW, string(data))
	return err
}
