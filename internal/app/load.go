package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/model"
	"github.com/specialistvlad/pumpgrid/internal/registry"
	"github.com/specialistvlad/pumpgrid/modules/env_vars"
)

// manifestModule registers the nodes of one manifest file as a unit, so a
// file can be removed or moved as a whole.
type manifestModule struct {
	manifest *model.Manifest
}

func (m *manifestModule) Name() string { return m.manifest.Path }

func (m *manifestModule) Register(r *registry.Registration) error {
	for _, def := range m.manifest.Definitions {
		r.Register(def.Node())
	}
	return nil
}

// LoadManifests parses every manifest under the configured path and adds one
// module per file to the graph, in file order, after the built-in modules.
func (a *App) LoadManifests(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests...", "graph_path", a.config.GraphPath)

	if a.config.EnvPrefix != "" {
		if err := a.modules.Add(ctx, &env_vars.Module{Prefix: a.config.EnvPrefix}); err != nil {
			return err
		}
	}

	manifests, err := model.LoadManifestsRecursively(ctx, a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	for _, m := range manifests {
		if err := a.modules.Add(ctx, &manifestModule{manifest: m}); err != nil {
			return fmt.Errorf("failed to register %s: %w", m.Path, err)
		}
	}
	a.manifests = manifests

	logger.Info("Graph loaded successfully.", "files", len(manifests), "nodes", len(a.graph.Modules()))
	return nil
}

// assignments parses the configured `-set` values in order.
func (a *App) assignments() (map[string]any, error) {
	values := make(map[string]any, len(a.config.Sets))
	for _, s := range a.config.Sets {
		name, v, err := model.ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}

// prime applies the manifests' inject blocks in file order and marks their
// demand names output-dirty.
func (a *App) prime() {
	for _, m := range a.manifests {
		a.graph.Inject(m.Values())
		a.graph.MarkOutput(m.Demand...)
	}
}
