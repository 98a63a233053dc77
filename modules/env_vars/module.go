// Package env_vars provides the built-in module that exposes part of the
// process environment to manifests as the `env` quantity.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/pumpgrid/internal/node"
	"github.com/specialistvlad/pumpgrid/internal/registry"
)

// Name is the module name in the module list.
const Name = "builtin/env_vars"

// Module implements the registry.Module interface for this package. Only
// variables whose name starts with Prefix are exposed.
type Module struct {
	Prefix string
}

// Name implements registry.Module.
func (m *Module) Name() string { return Name }

// Register adds the `env` node.
func (m *Module) Register(r *registry.Registration) error {
	r.Register(node.New("env", m.OnRunEnvVars))
	return nil
}

// OnRunEnvVars returns the matching environment as a name to value map.
func (m *Module) OnRunEnvVars(ctx context.Context, _ map[string]any) (any, error) {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		name, value, ok := strings.Cut(e, "=")
		if ok && name != "" && strings.HasPrefix(name, m.Prefix) {
			envMap[name] = value
		}
	}
	return envMap, nil
}
