package registry

import (
	"slices"

	"github.com/specialistvlad/pumpgrid/internal/graph"
	"github.com/specialistvlad/pumpgrid/internal/node"
)

// Module is a unit of registration, such as one manifest file or one plugin.
type Module interface {
	// Name identifies the module inside a ModuleList.
	Name() string
	// Register adds the module's nodes to the graph through r.
	Register(r *Registration) error
}

// Registration records what a module registered so it can be undone.
type Registration struct {
	graph *graph.Graph
	nodes []*node.Node
	lists []*node.List
}

// NewRegistration creates a Registration that registers into g.
func NewRegistration(g *graph.Graph) *Registration {
	return &Registration{graph: g}
}

// Register registers n and remembers it.
func (r *Registration) Register(n *node.Node) *node.Node {
	r.nodes = append(r.nodes, r.graph.Register(n))
	return n
}

// RegisterLast registers n with graph.RegisterLast semantics and remembers it.
func (r *Registration) RegisterLast(n *node.Node) *node.Node {
	r.nodes = append(r.nodes, r.graph.RegisterLast(n))
	return n
}

// Deferred registers a new deferred list seeded with nodes. The module may
// keep mutating the returned list; changes show up on the next rebuild.
func (r *Registration) Deferred(nodes ...*node.Node) *node.List {
	list := node.NewList(nodes...)
	r.lists = append(r.lists, r.graph.RegisterDeferred(list))
	return list
}

// Nodes returns the directly registered nodes in registration order.
func (r *Registration) Nodes() []*node.Node {
	return slices.Clone(r.nodes)
}

// Cleanup unregisters everything recorded, newest first, and empties the
// deferred lists. The graph is left stale; the caller rebuilds.
func (r *Registration) Cleanup() {
	for i := len(r.nodes) - 1; i >= 0; i-- {
		r.graph.Unregister(r.nodes[i])
	}
	r.nodes = nil
	for _, list := range r.lists {
		r.graph.UnregisterDeferred(list)
		list.Clear()
	}
	r.lists = nil
}
