package graph

import (
	"context"
	"slices"

	"github.com/specialistvlad/pumpgrid/internal/node"
)

// Register appends n to the registration list and returns it, so a handler
// can be declared and registered in one expression.
func (g *Graph) Register(n *node.Node) *node.Node {
	g.groups = append(g.groups, single{n: n})
	g.stale = true
	return n
}

// RegisterLast inserts n immediately after the last registered group that
// provides any of n's outputs, so n overrides that provider without being
// pushed past unrelated nodes. Without such a group n is appended.
func (g *Graph) RegisterLast(n *node.Node) *node.Node {
	at := len(g.groups)
	for i := len(g.groups) - 1; i >= 0; i-- {
		if providesAny(g.groups[i], n.Outputs()) {
			at = i + 1
			break
		}
	}
	g.groups = slices.Insert(g.groups, at, group(single{n: n}))
	g.stale = true
	return n
}

// RegisterDeferred appends a group whose members are read from list on every
// rebuild. The caller keeps ownership of list and may mutate it freely.
func (g *Graph) RegisterDeferred(list *node.List) *node.List {
	g.groups = append(g.groups, deferred{list: list})
	g.stale = true
	return list
}

// Unregister removes the single-node group holding n. Nodes that are members
// of a deferred list are removed through the list itself.
func (g *Graph) Unregister(n *node.Node) bool {
	idx := slices.IndexFunc(g.groups, func(gr group) bool {
		s, ok := gr.(single)
		return ok && s.n == n
	})
	if idx < 0 {
		return false
	}
	g.groups = slices.Delete(g.groups, idx, idx+1)
	g.stale = true
	return true
}

// UnregisterDeferred removes the deferred group backed by list.
func (g *Graph) UnregisterDeferred(list *node.List) bool {
	idx := slices.IndexFunc(g.groups, func(gr group) bool {
		d, ok := gr.(deferred)
		return ok && d.list == list
	})
	if idx < 0 {
		return false
	}
	g.groups = slices.Delete(g.groups, idx, idx+1)
	g.stale = true
	return true
}

// Clear drops every registration and rebuilds to an empty graph. The scope
// and the dirty sets are left untouched.
func (g *Graph) Clear(ctx context.Context) error {
	g.groups = nil
	g.stale = true
	return g.Rebuild(ctx, false)
}

func providesAny(gr group, names []string) bool {
	for _, m := range gr.members() {
		for _, name := range names {
			if m.Produces(name) {
				return true
			}
		}
	}
	return false
}
