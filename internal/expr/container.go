// Package expr turns HCL expressions into graph node handlers.
//
// A Container collects the expressions of one manifest node and reports what
// they reference: the root names of variable traversals, which become the
// node's dependencies, and the functions they call, which are checked
// against the supported function table before anything runs.
package expr

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container is a thread-safe helper that gathers HCL expressions and caches
// their analysis.
type Container struct {
	mu          sync.RWMutex
	expressions []hcl.Expression
	analyzed    bool

	references      []hcl.Traversal
	rootNames       []string
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds expressions for analysis, ignoring nil ones. Analysis is redone
// on the next read.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.analyzed = false
	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.analyzed {
		return
	}
	refs, funcs := scan(c.expressions...)
	c.references = refs
	c.rootNames = rootNames(refs)
	c.calledFunctions = funcs
	c.analyzed = true
}

// Expressions returns the collected expressions in insertion order.
func (c *Container) Expressions() []hcl.Expression {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]hcl.Expression(nil), c.expressions...)
}

// References returns all unique variable traversals, sorted.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// RootNames returns the unique, sorted root names of all references. For
// `a.b[0] + c` that is ["a", "c"].
func (c *Container) RootNames() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rootNames
}

// CalledFunctions returns all unique function names called, sorted.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calledFunctions
}
