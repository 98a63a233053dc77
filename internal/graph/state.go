package graph

import (
	"fmt"
	"maps"
	"slices"
)

// MarkInput marks names as changed so their dependents re-run on the next
// pump.
func (g *Graph) MarkInput(names ...string) {
	for _, name := range names {
		g.dirtyInputs[name] = struct{}{}
	}
}

// MarkOutput marks names as wanted so their producers and everything
// downstream of them re-run on the next pump.
func (g *Graph) MarkOutput(names ...string) {
	for _, name := range names {
		g.dirtyOutputs[name] = struct{}{}
	}
}

// UnmarkInput removes names from the input-dirty set. If any name is not
// marked nothing is removed and ErrNotFound is returned.
func (g *Graph) UnmarkInput(names ...string) error {
	return unmark(g.dirtyInputs, "input", names)
}

// UnmarkOutput removes names from the output-dirty set with the same
// all-or-nothing semantics as UnmarkInput.
func (g *Graph) UnmarkOutput(names ...string) error {
	return unmark(g.dirtyOutputs, "output", names)
}

func unmark(set nameSet, kind string, names []string) error {
	for _, name := range names {
		if _, ok := set[name]; !ok {
			return fmt.Errorf("unmark %s %q: %w", kind, name, ErrNotFound)
		}
	}
	for _, name := range names {
		delete(set, name)
	}
	return nil
}

// Inject writes values into the scope and marks each written name as
// input-dirty. Later maps win over earlier ones.
func (g *Graph) Inject(values ...map[string]any) {
	for _, m := range values {
		for name, v := range m {
			g.scope[name] = v
			g.dirtyInputs[name] = struct{}{}
		}
	}
}

// Scope returns a copy of every value computed or injected so far.
func (g *Graph) Scope() map[string]any {
	return maps.Clone(g.scope)
}

// Value returns the current value of name.
func (g *Graph) Value(name string) (any, bool) {
	v, ok := g.scope[name]
	return v, ok
}

// DirtyInputs returns the input-dirty names in sorted order.
func (g *Graph) DirtyInputs() []string {
	return sortedNames(g.dirtyInputs)
}

// DirtyOutputs returns the output-dirty names in sorted order.
func (g *Graph) DirtyOutputs() []string {
	return sortedNames(g.dirtyOutputs)
}

// PendingLazy returns the lazy nodes still waiting for a dependent that
// needs them, in execution order.
func (g *Graph) PendingLazy() []string {
	out := make([]string, 0, len(g.pendingLazy))
	for _, n := range g.ordered(g.pendingLazy) {
		out = append(out, n.Name())
	}
	return out
}

func sortedNames(set nameSet) []string {
	return slices.Sorted(maps.Keys(set))
}
