package node

import "slices"

// List is an externally owned, mutable group of nodes. A graph that holds a
// List through RegisterDeferred re-reads its contents on every rebuild, so
// plugins can extend the graph without per-node registration calls.
//
// List is not safe for concurrent use, matching the graph itself.
type List struct {
	nodes []*Node
}

// NewList creates a list holding the given nodes in order.
func NewList(nodes ...*Node) *List {
	return &List{nodes: slices.Clone(nodes)}
}

// Append adds nodes to the end of the list.
func (l *List) Append(nodes ...*Node) {
	l.nodes = append(l.nodes, nodes...)
}

// Remove deletes the first occurrence of n by identity and reports whether
// it was present.
func (l *List) Remove(n *Node) bool {
	i := slices.Index(l.nodes, n)
	if i < 0 {
		return false
	}
	l.nodes = slices.Delete(l.nodes, i, i+1)
	return true
}

// Clear empties the list.
func (l *List) Clear() {
	l.nodes = nil
}

// Nodes returns a snapshot of the current contents.
func (l *List) Nodes() []*Node {
	return slices.Clone(l.nodes)
}

// Len returns the number of nodes in the list.
func (l *List) Len() int { return len(l.nodes) }
