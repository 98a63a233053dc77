package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/pumpgrid/internal/node"
)

// Edge is a provider to consumer relation of the rebuilt graph.
type Edge struct {
	From *node.Node
	To   *node.Node
}

// Edges lists every dependency edge, ordered by the position of the
// provider and then of the consumer.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.modules {
		for _, to := range g.ordered(toSet(g.revdeps[from])) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// WriteDOT renders the rebuilt graph in Graphviz DOT format. Nodes are
// labelled with their name and outputs, lazy nodes are dashed and
// asynchronous ones bold. Open dependencies are drawn as plain-text inputs.
func (g *Graph) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph pumpgrid {\n")
	for i, n := range g.modules {
		style := "solid"
		switch {
		case n.IsLazy():
			style = "dashed"
		case n.IsAsync():
			style = "bold"
		}
		fmt.Fprintf(&b, "  n%d [label=%q shape=box style=%s];\n", i, n.Name()+"\n"+strings.Join(n.Outputs(), ", "), style)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", g.position[e.From], g.position[e.To])
	}
	for _, name := range sortedNames(g.openNames()) {
		fmt.Fprintf(&b, "  %q [shape=plaintext];\n", "in:"+name)
		for _, c := range g.openDeps[name] {
			fmt.Fprintf(&b, "  %q -> n%d [style=dashed];\n", "in:"+name, g.position[c])
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (g *Graph) openNames() nameSet {
	names := make(nameSet, len(g.openDeps))
	for name := range g.openDeps {
		names[name] = struct{}{}
	}
	return names
}

func toSet(nodes []*node.Node) nodeSet {
	s := make(nodeSet, len(nodes))
	s.add(nodes...)
	return s
}
