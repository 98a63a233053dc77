package app

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"sync"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/graph"
	"github.com/specialistvlad/pumpgrid/internal/model"
	"github.com/specialistvlad/pumpgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	graph      *graph.Graph
	modules    *registry.ModuleList
	manifests  []*model.Manifest
	httpServer *http.Server

	// published is the scope as of the last finished pump. The graph itself
	// is not safe for concurrent use, so the health server reads this copy.
	mu        sync.RWMutex
	published map[string]any
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW; each App owns an isolated logger and graph.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	g := graph.New(cfg.graphOptions()...)

	return &App{
		ctx:     ctx,
		outW:    outW,
		logger:  logger,
		config:  cfg,
		graph:   g,
		modules: registry.NewModuleList(g),
	}
}

// Graph returns the application's graph. This is primarily for testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// Modules returns the loaded manifest modules in registration order.
func (a *App) Modules() *registry.ModuleList {
	return a.modules
}

func (a *App) publish() {
	scope := a.graph.Scope()
	a.mu.Lock()
	a.published = scope
	a.mu.Unlock()
}

// Published returns the scope as of the last finished pump.
func (a *App) Published() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.published)
}
