package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pumpgrid/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
node "y" {
  value = x + 1
}

node "stats" {
  outputs = ["lo", "hi"]
  value   = [min(a, b), max(a, b)]
  remap   = { a = "y" }
  lazy    = true
  depends = ["extra"]
}

inject {
  x = 1
  b = 10
}

inject {
  x = 2
}

demand = ["hi"]
`

func TestParse(t *testing.T) {
	m, err := Parse(context.Background(), []byte(sampleManifest), "sample.hcl")
	require.NoError(t, err)

	assert.Equal(t, "sample.hcl", m.Path)
	assert.Equal(t, []string{"hi"}, m.Demand)
	require.Len(t, m.Definitions, 2)

	y := m.Definitions[0]
	assert.Equal(t, "y", y.Name)
	assert.Equal(t, []string{"x"}, y.Dependencies)
	assert.Empty(t, y.Outputs)
	assert.False(t, y.Lazy)

	stats := m.Definitions[1]
	assert.Equal(t, []string{"lo", "hi"}, stats.Outputs)
	assert.Equal(t, []string{"a", "b", "extra"}, stats.Dependencies)
	assert.Equal(t, map[string]string{"a": "y"}, stats.Remap)
	assert.True(t, stats.Lazy)
	assert.Equal(t, []string{"max", "min"}, stats.Expressions.CalledFunctions())

	require.Len(t, m.Injections, 3)
	assert.Equal(t, "x", m.Injections[0].Name)
	assert.Equal(t, "b", m.Injections[1].Name)
	assert.Equal(t, map[string]any{"x": 2.0, "b": 10.0}, m.Values())
}

func TestDefinition_Node(t *testing.T) {
	m, err := Parse(context.Background(), []byte(sampleManifest), "sample.hcl")
	require.NoError(t, err)

	n := m.Definitions[1].Node()
	assert.Equal(t, "stats", n.Name())
	assert.Equal(t, []string{"lo", "hi"}, n.Outputs())
	assert.Equal(t, []string{"y", "b", "extra"}, n.ResolvedDependencies())
	assert.True(t, n.IsLazy())
	assert.False(t, n.IsAsync())

	assert.Equal(t, []string{"y"}, m.Definitions[0].Node().Outputs())
}

func TestManifest_DrivesGraph(t *testing.T) {
	ctx := context.Background()
	m, err := Parse(ctx, []byte(`
node "y" {
  value = x + 1
}

node "stats" {
  outputs = ["lo", "hi"]
  value   = [min(a, b), max(a, b)]
  remap   = { a = "y" }
}

node "label" {
  value = format("%s..%s", lo, hi)
}

inject {
  x = 1
  b = 10
}
`), "graph.hcl")
	require.NoError(t, err)

	g := graph.New()
	for _, def := range m.Definitions {
		g.Register(def.Node())
	}
	g.Inject(m.Values())
	require.NoError(t, g.Pump(ctx))

	scope := g.Scope()
	assert.Equal(t, 2.0, scope["y"])
	assert.Equal(t, 2.0, scope["lo"])
	assert.Equal(t, 10.0, scope["hi"])
	assert.Equal(t, "2..10", scope["label"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax",
			src:     `node "a" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing value",
			src:     `node "a" {}`,
			wantErr: `Missing required argument`,
		},
		{
			name:    "unknown block",
			src:     `step "a" {}`,
			wantErr: `Unsupported block type`,
		},
		{
			name: "duplicate node",
			src: `
node "a" {
  value = 1
}
node "a" {
  value = 2
}`,
			wantErr: "Duplicate node",
		},
		{
			name:    "unsupported function",
			src:     `node "a" { value = file("x") }`,
			wantErr: "unsupported function(s) file",
		},
		{
			name:    "invalid remap",
			src: `
node "a" {
  value = x
  remap = { y = "z" }
}`,
			wantErr: `remaps "y"`,
		},
		{
			name:    "bad injection",
			src:     `inject { x = y }`,
			wantErr: "Variables not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadManifestsRecursively(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"b/second.hcl": `node "b" { value = a * 2 }`,
		"a.hcl":        `node "a" { value = 1 }`,
		"notes.txt":    `not a manifest`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	manifests, err := LoadManifestsRecursively(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, filepath.Join(root, "a.hcl"), manifests[0].Path)
	assert.Equal(t, "b", manifests[1].Definitions[0].Name)

	empty := t.TempDir()
	manifests, err = LoadManifestsRecursively(context.Background(), empty)
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		want     any
		wantErr  bool
	}{
		{in: "x=1", wantName: "x", want: 1.0},
		{in: " name = \"bob\"", wantName: "name", want: "bob"},
		{in: "list=[1, upper(\"a\")]", wantName: "list", want: []any{1.0, "A"}},
		{in: "eq=a==b", wantErr: true},
		{in: "noequals", wantErr: true},
		{in: "=1", wantErr: true},
		{in: "1x=1", wantErr: true},
		{in: "x=ref", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := ParseAssignment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.want, v)
		})
	}
}
