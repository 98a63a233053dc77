package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/graph"
)

type entry struct {
	module Module
	reg    *Registration
}

// ModuleList is an ordered set of modules registered into one graph.
type ModuleList struct {
	graph   *graph.Graph
	entries []entry
}

// NewModuleList creates an empty list registering into g.
func NewModuleList(g *graph.Graph) *ModuleList {
	return &ModuleList{graph: g}
}

// Graph returns the graph the modules register into.
func (l *ModuleList) Graph() *graph.Graph { return l.graph }

// Len returns the number of modules.
func (l *ModuleList) Len() int { return len(l.entries) }

// Modules returns the modules in order.
func (l *ModuleList) Modules() []Module {
	out := make([]Module, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.module
	}
	return out
}

// Index returns the position of the module called name, or -1.
func (l *ModuleList) Index(name string) int {
	return slices.IndexFunc(l.entries, func(e entry) bool { return e.module.Name() == name })
}

// Add registers m at the end of the list and rebuilds the graph with every
// output marked. If m fails to register, or the graph no longer rebuilds
// with it, whatever it registered is removed again.
func (l *ModuleList) Add(ctx context.Context, m Module) error {
	if err := l.validate(m); err != nil {
		return err
	}
	if err := l.add(m); err != nil {
		return err
	}
	if err := l.graph.Rebuild(ctx, true); err != nil {
		last := l.entries[len(l.entries)-1]
		last.reg.Cleanup()
		l.entries = l.entries[:len(l.entries)-1]
		if rerr := l.graph.Rebuild(ctx, false); rerr != nil {
			return errors.Join(fmt.Errorf("adding module %q: %w", m.Name(), err), rerr)
		}
		return fmt.Errorf("adding module %q: %w", m.Name(), err)
	}
	ctxlog.FromContext(ctx).Debug("Module added.", "module", m.Name(), "position", len(l.entries)-1)
	return nil
}

func (l *ModuleList) add(m Module) error {
	reg := NewRegistration(l.graph)
	if err := m.Register(reg); err != nil {
		reg.Cleanup()
		return fmt.Errorf("registering module %q: %w", m.Name(), err)
	}
	l.entries = append(l.entries, entry{module: m, reg: reg})
	return nil
}

// Remove unregisters the module at index, counting from the end when index
// is negative, and rebuilds the graph.
func (l *ModuleList) Remove(ctx context.Context, index int) (Module, error) {
	i, err := l.resolve(index)
	if err != nil {
		return nil, err
	}
	e := l.entries[i]
	e.reg.Cleanup()
	l.entries = slices.Delete(l.entries, i, i+1)
	ctxlog.FromContext(ctx).Debug("Module removed.", "module", e.module.Name(), "position", i)
	return e.module, l.graph.Rebuild(ctx, true)
}

// Move moves the module at from to position to. Every module from the lower
// of the two positions onward is removed and added back in the new order.
// If one of them fails to register again, the old order is put back.
func (l *ModuleList) Move(ctx context.Context, from, to int) error {
	fromIdx, err := l.resolve(from)
	if err != nil {
		return err
	}
	toIdx, err := l.resolve(to)
	if err != nil {
		return err
	}
	if fromIdx == toIdx {
		return nil
	}

	lo := min(fromIdx, toIdx)
	tail := make([]Module, 0, len(l.entries)-lo)
	for i := len(l.entries) - 1; i >= lo; i-- {
		l.entries[i].reg.Cleanup()
		tail = append(tail, l.entries[i].module)
	}
	slices.Reverse(tail)
	l.entries = l.entries[:lo]

	original := slices.Clone(tail)
	moved := tail[fromIdx-lo]
	tail = slices.Delete(tail, fromIdx-lo, fromIdx-lo+1)
	tail = slices.Insert(tail, toIdx-lo, moved)

	for _, m := range tail {
		if err := l.add(m); err != nil {
			return l.restoreTail(ctx, lo, original, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Module moved.", "module", moved.Name(), "from", fromIdx, "to", toIdx)
	return l.graph.Rebuild(ctx, true)
}

// restoreTail drops whatever a failed Move re-added from lo onward and
// registers the original modules again.
func (l *ModuleList) restoreTail(ctx context.Context, lo int, original []Module, cause error) error {
	for i := len(l.entries) - 1; i >= lo; i-- {
		l.entries[i].reg.Cleanup()
	}
	l.entries = l.entries[:lo]

	errs := []error{fmt.Errorf("moving module: %w", cause)}
	for _, m := range original {
		if err := l.add(m); err != nil {
			errs = append(errs, err)
		}
	}
	if err := l.graph.Rebuild(ctx, false); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (l *ModuleList) resolve(index int) (int, error) {
	i := index
	if i < 0 {
		i += len(l.entries)
	}
	if i < 0 || i >= len(l.entries) {
		return 0, fmt.Errorf("module index %d out of range [0, %d): %w", index, len(l.entries), ErrIndex)
	}
	return i, nil
}
