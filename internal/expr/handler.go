package expr

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/ctyconv"
	"github.com/specialistvlad/pumpgrid/internal/node"
)

// Handler returns a node handler that evaluates expr with the call arguments
// as variables. The result is converted with ctyconv.ToNative, so a tuple
// result arrives as []any and can feed several outputs.
func Handler(expr hcl.Expression) node.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		val, err := Eval(expr, args)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Expression evaluated.", "range", expr.Range().String())
		return val, nil
	}
}

// Eval evaluates expr once against vars.
func Eval(expr hcl.Expression, vars map[string]any) (any, error) {
	variables, err := ctyconv.Object(vars)
	if err != nil {
		return nil, fmt.Errorf("preparing variables: %w", err)
	}
	evalCtx := &hcl.EvalContext{
		Variables: variables,
		Functions: functions,
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyconv.ToNative(val)
}
