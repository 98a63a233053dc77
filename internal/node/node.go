package node

import (
	"context"
	"slices"
)

// Handler is the unit of user logic wrapped by a Node. It receives the values
// of its (remapped) dependencies that are currently present in the scope and
// returns either a single value or, for nodes with several outputs, a []any
// with one element per output.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Node is an immutable descriptor of one registered handler. It carries no
// graph-position state; the graph derives ordering and edges on rebuild.
type Node struct {
	// name identifies the node in logs and exports. It is also the default
	// single output name.
	name    string
	handler Handler

	outputs      []string
	dependencies []string
	remap        map[string]string

	async bool
	lazy  bool
}

// Option configures a Node at construction time.
type Option func(*Node)

// WithOutputs sets the ordered quantity names produced by the handler.
func WithOutputs(names ...string) Option {
	return func(n *Node) {
		n.outputs = slices.Clone(names)
	}
}

// WithDependencies sets the parameter names the handler reads.
func WithDependencies(names ...string) Option {
	return func(n *Node) {
		n.dependencies = slices.Clone(names)
	}
}

// WithRemap maps declared parameter names to the quantity names actually
// read from the scope.
func WithRemap(remap map[string]string) Option {
	return func(n *Node) {
		n.remap = make(map[string]string, len(remap))
		for k, v := range remap {
			n.remap[k] = v
		}
	}
}

// Lazy marks the node as as-needed: it only runs when a non-lazy consumer
// that runs in the same pump needs one of its outputs.
func Lazy() Option {
	return func(n *Node) { n.lazy = true }
}

// Async makes the node eligible for the background executor when a pump is
// started in asynchronous mode.
func Async() Option {
	return func(n *Node) { n.async = true }
}

// New creates a node. When no outputs are given the node produces a single
// quantity named after the node itself.
func New(name string, h Handler, opts ...Option) *Node {
	n := &Node{
		name:    name,
		handler: h,
	}
	for _, opt := range opts {
		opt(n)
	}
	if len(n.outputs) == 0 {
		n.outputs = []string{name}
	}
	return n
}

// Name returns the node's name, also its default output.
func (n *Node) Name() string { return n.name }

// Handler returns the wrapped callable.
func (n *Node) Handler() Handler { return n.handler }

// Outputs returns a copy of the ordered output names.
func (n *Node) Outputs() []string { return slices.Clone(n.outputs) }

// Dependencies returns a copy of the declared parameter names.
func (n *Node) Dependencies() []string { return slices.Clone(n.dependencies) }

// Remap returns a copy of the parameter remapping table.
func (n *Node) Remap() map[string]string {
	out := make(map[string]string, len(n.remap))
	for k, v := range n.remap {
		out[k] = v
	}
	return out
}

// Resolve returns the quantity name read for the declared parameter dep.
func (n *Node) Resolve(dep string) string {
	if target, ok := n.remap[dep]; ok {
		return target
	}
	return dep
}

// ResolvedDependencies returns the quantity names read by the node, in
// declaration order.
func (n *Node) ResolvedDependencies() []string {
	out := make([]string, len(n.dependencies))
	for i, dep := range n.dependencies {
		out[i] = n.Resolve(dep)
	}
	return out
}

// Produces reports whether name is one of the node's outputs.
func (n *Node) Produces(name string) bool {
	return slices.Contains(n.outputs, name)
}

// IsLazy reports whether the node only runs when a consumer pulls it.
func (n *Node) IsLazy() bool { return n.lazy }

// IsAsync reports whether the node may run on the background executor.
func (n *Node) IsAsync() bool { return n.async }

// String implements fmt.Stringer for log attributes.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.name
}
