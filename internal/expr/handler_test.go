package expr_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/pumpgrid/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		args    map[string]any
		want    any
		wantErr string
	}{
		{name: "arithmetic", src: `x + 1`, args: map[string]any{"x": 2}, want: 3.0},
		{name: "template", src: `"hi ${upper(who)}"`, args: map[string]any{"who": "bob"}, want: "hi BOB"},
		{name: "tuple", src: `[x, x * 2]`, args: map[string]any{"x": 2}, want: []any{2.0, 4.0}},
		{name: "object", src: `{ n = length(xs) }`, args: map[string]any{"xs": []any{1, 2, 3}}, want: map[string]any{"n": 3.0}},
		{name: "conditional", src: `flag ? "yes" : "no"`, args: map[string]any{"flag": true}, want: "yes"},
		{name: "missing variable", src: `x + y`, args: map[string]any{"x": 1}, wantErr: "Unknown variable"},
		{name: "unknown function", src: `nope(x)`, args: map[string]any{"x": 1}, wantErr: "Call to unknown function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := expr.Handler(parseExpr(t, tt.src))
			got, err := h(context.Background(), tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckFunctions(t *testing.T) {
	assert.NoError(t, expr.CheckFunctions([]string{"upper", "max"}))

	err := expr.CheckFunctions([]string{"upper", "file", "env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file, env")
	assert.Contains(t, err.Error(), "available: abs")

	assert.Len(t, expr.Functions(), 13)
}
