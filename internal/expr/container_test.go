package expr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pumpgrid/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return e
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := expr.NewContainer(
		parseExpr(t, `upper("hello")`),
		parseExpr(t, `foo.bar`),
		parseExpr(t, `lower(foo.baz) + qux`),
		parseExpr(t, `foo.bar`), // duplicate reference
	)

	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())

	refs := c.References()
	require.Len(t, refs, 3)
	keys := []string{expr.TraversalKey(refs[0]), expr.TraversalKey(refs[1]), expr.TraversalKey(refs[2])}
	require.Equal(t, []string{"foo.bar", "foo.baz", "qux"}, keys)

	require.Equal(t, []string{"foo", "qux"}, c.RootNames())
}

func TestContainer_ForExpressionLocalsAreNotReferences(t *testing.T) {
	c := expr.NewContainer(parseExpr(t, `[for v in items : v * factor]`))
	require.Equal(t, []string{"factor", "items"}, c.RootNames())
}

func TestContainer_NestedFunctions(t *testing.T) {
	c := expr.NewContainer(parseExpr(t, `{ k = max(a, min(b, 3)) }[cond ? "k" : "j"]`))
	require.Equal(t, []string{"max", "min"}, c.CalledFunctions())
	require.Equal(t, []string{"a", "b", "cond"}, c.RootNames())
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := expr.NewContainer(parseExpr(t, `first`))
	require.Equal(t, []string{"first"}, c.RootNames())

	c.Add(parseExpr(t, `second`), nil)
	require.Equal(t, []string{"first", "second"}, c.RootNames())
	require.Len(t, c.Expressions(), 2)
}

func TestContainer_ConcurrentReads(t *testing.T) {
	c := expr.NewContainer(parseExpr(t, `a + b + upper(c)`))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, c.RootNames(), 3)
			assert.Len(t, c.CalledFunctions(), 1)
		}()
	}
	wg.Wait()
}
