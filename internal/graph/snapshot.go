package graph

import (
	"context"
	"maps"
)

// snapshot is the restorable part of a graph's runtime state. The surfaced
// error set is deliberately absent: errors seen during a restored pump stay
// seen.
type snapshot struct {
	scope        map[string]any
	dirtyInputs  nameSet
	dirtyOutputs nameSet
	pendingLazy  nodeSet
}

func (g *Graph) snapshot() snapshot {
	return snapshot{
		scope:        maps.Clone(g.scope),
		dirtyInputs:  maps.Clone(g.dirtyInputs),
		dirtyOutputs: maps.Clone(g.dirtyOutputs),
		pendingLazy:  maps.Clone(g.pendingLazy),
	}
}

func (g *Graph) restore(s snapshot) {
	g.scope = s.scope
	g.dirtyInputs = s.dirtyInputs
	g.dirtyOutputs = s.dirtyOutputs
	g.pendingLazy = s.pendingLazy
}

// PumpRestore answers a what-if question: it injects injections, pumps
// towards outputs and returns the resulting scope, then puts the scope, the
// dirty sets and the pending lazy nodes back exactly as they were. The state
// is restored even when the pump fails. A stale graph is rebuilt first, so
// the outputs that rebuild marks survive the restore.
func (g *Graph) PumpRestore(ctx context.Context, outputs []string, async bool, injections map[string]any) (map[string]any, error) {
	if g.stale {
		if err := g.Rebuild(ctx, true); err != nil {
			return nil, err
		}
	}
	saved := g.snapshot()
	defer g.restore(saved)

	g.Inject(injections)
	if err := g.Pump(ctx, PumpOutputs(outputs...), PumpAsync(async)); err != nil {
		return nil, err
	}
	return maps.Clone(g.scope), nil
}
