package expr

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var functions = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"coalesce": stdlib.CoalesceFunc,
	"concat":   stdlib.ConcatFunc,
	"floor":    stdlib.FloorFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"length":   stdlib.LengthFunc,
	"lower":    stdlib.LowerFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"strlen":   stdlib.StrlenFunc,
	"upper":    stdlib.UpperFunc,
}

// Functions returns the function table available to node expressions.
func Functions() map[string]function.Function {
	return maps.Clone(functions)
}

// CheckFunctions reports every name in called that is not in the function
// table.
func CheckFunctions(called []string) error {
	var unknown []string
	for _, name := range called {
		if _, ok := functions[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("unsupported function(s) %s; available: %s",
		strings.Join(unknown, ", "), strings.Join(slices.Sorted(maps.Keys(functions)), ", "))
}
