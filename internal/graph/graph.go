package graph

import (
	"cmp"
	"maps"
	"slices"

	"github.com/specialistvlad/pumpgrid/internal/executor"
	"github.com/specialistvlad/pumpgrid/internal/localexecutor"
	"github.com/specialistvlad/pumpgrid/internal/node"
)

// DedupPolicy selects how repeated handler failures are recognised.
type DedupPolicy int

const (
	// DedupByMessage suppresses any failure whose message text was already
	// surfaced, regardless of which node raised it.
	DedupByMessage DedupPolicy = iota
	// DedupByNode suppresses every failure of a node after its first one.
	DedupByNode
	// DedupByNodeAndMessage suppresses a failure only when the same node
	// already surfaced the same message.
	DedupByNodeAndMessage
)

// OrderPolicy selects what rebuild does with a consumer registered before
// the provider of one of its inputs.
type OrderPolicy int

const (
	// OrderStrict fails the rebuild with an *OrderError.
	OrderStrict OrderPolicy = iota
	// OrderLenient logs a warning and leaves the dependency open.
	OrderLenient
)

// Option configures a Graph.
type Option func(*Graph)

// WithExecutor sets the background executor used for asynchronous nodes.
func WithExecutor(e executor.Executor) Option {
	return func(g *Graph) { g.exec = e }
}

// WithDedupPolicy sets the handler failure dedup policy.
func WithDedupPolicy(p DedupPolicy) Option {
	return func(g *Graph) { g.dedup = p }
}

// WithOrderPolicy sets the out-of-order registration policy.
func WithOrderPolicy(p OrderPolicy) Option {
	return func(g *Graph) { g.order = p }
}

// group is one element of the registration list: either a single node
// registered directly or an externally owned list read on every rebuild.
type group interface {
	members() []*node.Node
}

type single struct{ n *node.Node }

func (s single) members() []*node.Node { return []*node.Node{s.n} }

type deferred struct{ list *node.List }

func (d deferred) members() []*node.Node { return d.list.Nodes() }

type nodeSet map[*node.Node]struct{}

func (s nodeSet) add(nodes ...*node.Node) {
	for _, n := range nodes {
		s[n] = struct{}{}
	}
}

func (s nodeSet) union(other nodeSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

func (s nodeSet) has(n *node.Node) bool {
	_, ok := s[n]
	return ok
}

type nameSet map[string]struct{}

type errorKey struct {
	node    *node.Node
	message string
}

// Graph owns registered nodes, the dependency indexes derived from them and
// the mutable runtime state: the scope, the dirty sets, the pending lazy
// nodes and the errors already surfaced.
//
// A Graph is not safe for concurrent use. The only concurrency is the
// background execution of asynchronous nodes, which never touches the scope.
type Graph struct {
	groups []group
	stale  bool

	// Derived on rebuild.
	modules           []*node.Node
	position          map[*node.Node]int
	providers         map[string]*node.Node
	deps              map[*node.Node][]*node.Node
	revdeps           map[*node.Node][]*node.Node
	openDeps          map[string][]*node.Node
	rolling           map[*node.Node]nodeSet
	rollingRevdeps    map[string]nodeSet
	rollingOutputDeps map[string]nodeSet

	// Runtime state.
	scope        map[string]any
	dirtyInputs  nameSet
	dirtyOutputs nameSet
	pendingLazy  nodeSet
	seenErrors   map[errorKey]struct{}

	// current is the persistent pump advanced by PumpTick.
	current *Pump

	exec    executor.Executor
	dedup   DedupPolicy
	order   OrderPolicy
	metrics instruments
}

// New creates an empty graph. Without WithExecutor asynchronous nodes run on
// a single-slot localexecutor.
func New(opts ...Option) *Graph {
	g := &Graph{
		position:          make(map[*node.Node]int),
		providers:         make(map[string]*node.Node),
		deps:              make(map[*node.Node][]*node.Node),
		revdeps:           make(map[*node.Node][]*node.Node),
		openDeps:          make(map[string][]*node.Node),
		rolling:           make(map[*node.Node]nodeSet),
		rollingRevdeps:    make(map[string]nodeSet),
		rollingOutputDeps: make(map[string]nodeSet),
		scope:             make(map[string]any),
		dirtyInputs:       make(nameSet),
		dirtyOutputs:      make(nameSet),
		pendingLazy:       make(nodeSet),
		seenErrors:        make(map[errorKey]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.exec == nil {
		g.exec = localexecutor.New()
	}
	return g
}

// Modules returns the flattened node order of the last rebuild. It is both
// the execution order and the tie-break for providers.
func (g *Graph) Modules() []*node.Node {
	return slices.Clone(g.modules)
}

// Providers returns the quantity name to provider mapping of the last rebuild.
func (g *Graph) Providers() map[string]*node.Node {
	return maps.Clone(g.providers)
}

// Provider returns the node producing name, if any.
func (g *Graph) Provider(name string) (*node.Node, bool) {
	n, ok := g.providers[name]
	return n, ok
}

// Dependencies returns the direct dependency nodes of n.
func (g *Graph) Dependencies(n *node.Node) []*node.Node {
	return slices.Clone(g.deps[n])
}

// Dependents returns the direct dependent nodes of n.
func (g *Graph) Dependents(n *node.Node) []*node.Node {
	return slices.Clone(g.revdeps[n])
}

// OpenDependencies returns, per quantity name, the nodes that read it while
// no provider exists. Such quantities only arrive through Inject.
func (g *Graph) OpenDependencies() map[string][]*node.Node {
	out := make(map[string][]*node.Node, len(g.openDeps))
	for name, nodes := range g.openDeps {
		out[name] = slices.Clone(nodes)
	}
	return out
}

// RollingRevdeps returns the nodes that re-run when name changes, in
// execution order.
func (g *Graph) RollingRevdeps(name string) []*node.Node {
	return g.ordered(g.rollingRevdeps[name])
}

// RollingOutputDeps returns the producer of name and everything downstream
// of it, in execution order.
func (g *Graph) RollingOutputDeps(name string) []*node.Node {
	return g.ordered(g.rollingOutputDeps[name])
}

// Downstream returns every node transitively depending on n.
func (g *Graph) Downstream(n *node.Node) []*node.Node {
	return g.ordered(g.rolling[n])
}

// ordered returns the members of set sorted by execution order.
func (g *Graph) ordered(set nodeSet) []*node.Node {
	out := make([]*node.Node, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *node.Node) int {
		return cmp.Compare(g.position[a], g.position[b])
	})
	return out
}

// Stale reports whether registrations changed since the last rebuild.
func (g *Graph) Stale() bool {
	return g.stale
}

func appendUnique[T comparable](slice []T, item T) []T {
	if slices.Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}
