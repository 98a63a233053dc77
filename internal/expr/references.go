package expr

import (
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string for an hcl.Traversal,
// suitable as a map key; e.g. `a.b[0]`.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// scan returns the distinct variable traversals of exprs sorted by key, and
// the sorted names of the functions they call.
func scan(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	calls := make(map[string]struct{})

	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, t := range e.Variables() {
			traversals[TraversalKey(t)] = t
		}
		// Variables() does not report function calls.
		if syn, ok := e.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syn, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					calls[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	refs := make([]hcl.Traversal, 0, len(traversals))
	for _, key := range slices.Sorted(maps.Keys(traversals)) {
		refs = append(refs, traversals[key])
	}
	return refs, slices.Sorted(maps.Keys(calls))
}

// rootNames is the sorted set of the first segments of traversals: the
// scope names an expression reads.
func rootNames(traversals []hcl.Traversal) []string {
	names := make([]string, 0, len(traversals))
	for _, t := range traversals {
		names = append(names, t.RootName())
	}
	slices.Sort(names)
	return slices.Compact(names)
}
