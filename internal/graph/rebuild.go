package graph

import (
	"context"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/node"
)

// indexes is the derived structure computed by a rebuild. It is assembled
// off to the side and only committed once it is complete, so a failed
// rebuild leaves the previous indexes in place.
type indexes struct {
	modules           []*node.Node
	position          map[*node.Node]int
	providers         map[string]*node.Node
	deps              map[*node.Node][]*node.Node
	revdeps           map[*node.Node][]*node.Node
	openDeps          map[string][]*node.Node
	rolling           map[*node.Node]nodeSet
	rollingRevdeps    map[string]nodeSet
	rollingOutputDeps map[string]nodeSet
}

type openRead struct {
	name     string
	consumer *node.Node
}

// Rebuild recomputes every derived index from the registration list. When
// markOutputs is set, every output of every node is marked output-dirty so
// the next pump recomputes the whole graph.
//
// Providers are resolved in a single forward pass: a node only sees
// providers registered before it, which keeps the dependency graph acyclic.
func (g *Graph) Rebuild(ctx context.Context, markOutputs bool) error {
	logger := ctxlog.FromContext(ctx)

	idx := indexes{
		position:          make(map[*node.Node]int),
		providers:         make(map[string]*node.Node),
		deps:              make(map[*node.Node][]*node.Node),
		revdeps:           make(map[*node.Node][]*node.Node),
		openDeps:          make(map[string][]*node.Node),
		rolling:           make(map[*node.Node]nodeSet),
		rollingRevdeps:    make(map[string]nodeSet),
		rollingOutputDeps: make(map[string]nodeSet),
	}

	for _, gr := range g.groups {
		for _, n := range gr.members() {
			if _, dup := idx.position[n]; dup {
				logger.Debug("Node registered more than once, keeping first position.", "node", n.Name())
				continue
			}
			idx.position[n] = len(idx.modules)
			idx.modules = append(idx.modules, n)
		}
	}

	var open []openRead
	for _, n := range idx.modules {
		for _, name := range n.ResolvedDependencies() {
			if p, ok := idx.providers[name]; ok {
				idx.deps[n] = appendUnique(idx.deps[n], p)
				idx.revdeps[p] = appendUnique(idx.revdeps[p], n)
				continue
			}
			idx.openDeps[name] = appendUnique(idx.openDeps[name], n)
			open = append(open, openRead{name: name, consumer: n})
		}
		for _, name := range n.Outputs() {
			idx.providers[name] = n
		}
	}

	for _, o := range open {
		p, ok := idx.providers[o.name]
		if !ok || p == o.consumer || idx.position[p] < idx.position[o.consumer] {
			continue
		}
		orderErr := &OrderError{Consumer: o.consumer, Provider: p, Name: o.name}
		if g.order == OrderStrict {
			logger.Debug("Rebuild rejected out-of-order registration.", "error", orderErr)
			return orderErr
		}
		logger.Warn("Out-of-order registration, dependency stays open.",
			"consumer", o.consumer.Name(), "provider", p.Name(), "name", o.name)
	}

	for _, n := range idx.modules {
		idx.rolling[n] = downstream(idx.revdeps, n)
	}

	// A lazy provider never re-runs because its own inputs changed, but a
	// wanted output always pulls its producer in.
	for name, p := range idx.providers {
		outs := make(nodeSet, len(idx.rolling[p])+1)
		outs.add(p)
		outs.union(idx.rolling[p])
		idx.rollingOutputDeps[name] = outs

		if p.IsLazy() {
			continue
		}
		revs := make(nodeSet, len(idx.rolling[p]))
		revs.union(idx.rolling[p])
		idx.rollingRevdeps[name] = revs
	}

	for name, consumers := range idx.openDeps {
		revs := ensureSet(idx.rollingRevdeps, name)
		outs := ensureSet(idx.rollingOutputDeps, name)
		for _, c := range consumers {
			revs.add(c)
			revs.union(idx.rolling[c])
			outs.add(c)
			outs.union(idx.rolling[c])
		}
	}

	g.commit(idx)

	if markOutputs {
		for _, n := range g.modules {
			for _, name := range n.Outputs() {
				g.dirtyOutputs[name] = struct{}{}
			}
		}
	}

	logger.Debug("Graph rebuilt.",
		"nodes", len(g.modules), "providers", len(g.providers), "open", len(g.openDeps))
	return nil
}

func (g *Graph) commit(idx indexes) {
	g.modules = idx.modules
	g.position = idx.position
	g.providers = idx.providers
	g.deps = idx.deps
	g.revdeps = idx.revdeps
	g.openDeps = idx.openDeps
	g.rolling = idx.rolling
	g.rollingRevdeps = idx.rollingRevdeps
	g.rollingOutputDeps = idx.rollingOutputDeps
	g.stale = false

	// Lazy nodes that are no longer registered can never run again.
	for n := range g.pendingLazy {
		if _, ok := g.position[n]; !ok {
			delete(g.pendingLazy, n)
		}
	}
}

// downstream walks revdeps from start with an explicit stack and returns
// every node reachable from it, excluding start itself.
func downstream(revdeps map[*node.Node][]*node.Node, start *node.Node) nodeSet {
	seen := make(nodeSet)
	stack := append([]*node.Node(nil), revdeps[start]...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.has(current) {
			continue
		}
		seen.add(current)
		stack = append(stack, revdeps[current]...)
	}
	return seen
}

func ensureSet(m map[string]nodeSet, name string) nodeSet {
	s, ok := m[name]
	if !ok {
		s = make(nodeSet)
		m[name] = s
	}
	return s
}
