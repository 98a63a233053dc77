package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/executor"
	"github.com/specialistvlad/pumpgrid/internal/node"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is the lifecycle position of a Pump.
type State int

const (
	// StateIdle means the pump has not taken its first step.
	StateIdle State = iota
	// StateRunning means the pump is walking the execution order.
	StateRunning
	// StateSuspended means an asynchronous node is in flight.
	StateSuspended
	// StateDone means the pump finished, successfully or not.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PumpOption configures a Pump.
type PumpOption func(*Pump)

// PumpAsync lets nodes flagged as asynchronous run on the graph's executor.
// Without it every node runs inline.
func PumpAsync(async bool) PumpOption {
	return func(p *Pump) { p.async = async }
}

// PumpInputs replaces the graph's input-dirty set as the pump's changed
// names. Only these names are consumed when the pump completes.
func PumpInputs(names ...string) PumpOption {
	return func(p *Pump) {
		p.inputs = append([]string(nil), names...)
		p.explicitInputs = true
	}
}

// PumpOutputs replaces the graph's output-dirty set as the pump's wanted
// names. Only these names are consumed when the pump completes.
func PumpOutputs(names ...string) PumpOption {
	return func(p *Pump) {
		p.outputs = append([]string(nil), names...)
		p.explicitOutputs = true
	}
}

// Pump is one propagation pass over a Graph. It is driven one step at a time
// with Step, or to completion with Run. A pump computes its working set from
// the graph's dirty state on its first step.
type Pump struct {
	g     *Graph
	id    string
	async bool

	inputs          []string
	outputs         []string
	explicitInputs  bool
	explicitOutputs bool

	state      State
	err        error
	modules    []*node.Node
	rolling    map[*node.Node]nodeSet
	candidates nodeSet
	next       int
	pending    *inflight

	span    trace.Span
	started time.Time
}

type inflight struct {
	n      *node.Node
	handle executor.Handle
	span   trace.Span
}

// NewPump creates an idle pump over g.
func (g *Graph) NewPump(opts ...PumpOption) *Pump {
	p := &Pump{g: g, id: uuid.NewString()[:12]}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pump runs a fresh pump to completion.
func (g *Graph) Pump(ctx context.Context, opts ...PumpOption) error {
	return g.NewPump(opts...).Run(ctx)
}

// PumpTick advances the graph's persistent asynchronous pump by one step,
// creating it when none is in progress. Once the pump reports StateDone the
// next call starts a new one, so a host loop can call PumpTick once per
// frame forever.
func (g *Graph) PumpTick(ctx context.Context) (State, error) {
	if g.current == nil {
		g.current = g.NewPump(PumpAsync(true))
	}
	st, err := g.current.Step(ctx)
	if st == StateDone {
		g.current = nil
	}
	return st, err
}

// ID returns the pump's short identifier used in logs and traces.
func (p *Pump) ID() string { return p.id }

// State returns the pump's lifecycle position.
func (p *Pump) State() State { return p.state }

// Err returns the error the pump finished with.
func (p *Pump) Err() error { return p.err }

// Handle returns the handle of the asynchronous node in flight while the
// pump is suspended, and nil otherwise.
func (p *Pump) Handle() executor.Handle {
	if p.pending == nil {
		return nil
	}
	return p.pending.handle
}

// Run steps the pump until it is done. While suspended it blocks on the
// in-flight handle instead of spinning; if ctx ends during that wait the pump
// finishes with ctx's error and the task is abandoned.
func (p *Pump) Run(ctx context.Context) error {
	for {
		st, err := p.Step(ctx)
		switch st {
		case StateDone:
			return err
		case StateSuspended:
			if _, waitErr := p.pending.handle.Get(ctx); waitErr != nil && ctx.Err() != nil {
				_, err = p.finish(ctxlog.With(ctx, "pump", p.id), ctx.Err())
				return err
			}
		}
	}
}

// Step advances the pump as far as it can without blocking. It returns
// StateSuspended when an asynchronous node is in flight; calling Step again
// re-checks the handle and resumes once it is ready. The returned error is
// non-nil only together with StateDone.
func (p *Pump) Step(ctx context.Context) (State, error) {
	ctx = ctxlog.With(ctx, "pump", p.id)
	logger := ctxlog.FromContext(ctx)

	switch p.state {
	case StateDone:
		return StateDone, p.err
	case StateIdle:
		if err := p.start(ctx); err != nil {
			return p.finish(ctx, err)
		}
	case StateSuspended:
		if !p.pending.handle.IsReady() {
			return StateSuspended, nil
		}
		done := p.pending
		p.pending = nil
		p.state = StateRunning
		v, err := done.handle.Get(ctx)
		endSpan(done.span, err)
		logger.Debug("Asynchronous node resumed.", "node", done.n.Name())
		if err := p.complete(ctx, done.n, v, err); err != nil {
			return p.finish(ctx, err)
		}
	}

	for p.next < len(p.modules) {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, err)
		}
		n := p.modules[p.next]
		p.next++
		if !p.shouldRun(n) {
			continue
		}
		args := p.g.arguments(n)
		nodeCtx, span := p.nodeSpan(ctx, n)

		if p.async && n.IsAsync() {
			h, err := p.g.exec.Submit(nodeCtx, func(taskCtx context.Context) (any, error) {
				return call(taskCtx, n, args)
			})
			if err != nil {
				endSpan(span, err)
				return p.finish(ctx, fmt.Errorf("submitting node %q: %w", n.Name(), err))
			}
			logger.Debug("Asynchronous node submitted.", "node", n.Name())
			p.pending = &inflight{n: n, handle: h, span: span}
			p.state = StateSuspended
			return StateSuspended, nil
		}

		v, err := call(nodeCtx, n, args)
		endSpan(span, err)
		if err := p.complete(ctx, n, v, err); err != nil {
			return p.finish(ctx, err)
		}
	}
	return p.finish(ctx, nil)
}

// start computes the working set. The candidate set is every node reachable
// from a changed input, every producer of a wanted output together with its
// downstream, and every lazy node still pending from earlier pumps.
func (p *Pump) start(ctx context.Context) error {
	g := p.g
	g.metrics.init(ctxlog.FromContext(ctx))
	p.started = time.Now()
	p.state = StateRunning

	if g.stale {
		if err := g.Rebuild(ctx, true); err != nil {
			return err
		}
	}
	if !p.explicitInputs {
		p.inputs = sortedNames(g.dirtyInputs)
	}
	if !p.explicitOutputs {
		p.outputs = sortedNames(g.dirtyOutputs)
	}

	p.candidates = make(nodeSet)
	for _, name := range p.inputs {
		p.candidates.union(g.rollingRevdeps[name])
	}
	for _, name := range p.outputs {
		p.candidates.union(g.rollingOutputDeps[name])
	}
	p.candidates.union(g.pendingLazy)
	for n := range p.candidates {
		if n.IsLazy() {
			g.pendingLazy.add(n)
		}
	}
	p.modules = g.modules
	p.rolling = g.rolling

	_, p.span = tracer.Start(ctx, "graph.Pump",
		trace.WithAttributes(
			attribute.String("graph.pump_id", p.id),
			attribute.Bool("graph.async", p.async),
			attribute.StringSlice("graph.inputs", p.inputs),
			attribute.StringSlice("graph.outputs", p.outputs),
			attribute.Int("graph.candidates", len(p.candidates)),
		),
	)
	ctxlog.FromContext(ctx).Debug("Pump started.",
		"inputs", p.inputs, "outputs", p.outputs, "candidates", len(p.candidates))
	return nil
}

// shouldRun reports whether n runs in this pass. A lazy candidate only runs
// when a non-lazy candidate depends on it, directly or transitively, and
// stays pending otherwise.
func (p *Pump) shouldRun(n *node.Node) bool {
	if !p.candidates.has(n) {
		return false
	}
	if !n.IsLazy() {
		return true
	}
	for m := range p.rolling[n] {
		if !m.IsLazy() && p.candidates.has(m) {
			delete(p.g.pendingLazy, n)
			return true
		}
	}
	return false
}

// complete writes a node's result into the scope, or applies the dedup
// policy to its failure. A non-nil return aborts the pump.
func (p *Pump) complete(ctx context.Context, n *node.Node, v any, err error) error {
	g := p.g
	logger := ctxlog.FromContext(ctx)
	if err == nil {
		err = g.write(n, v)
	}
	g.metrics.nodeRan(ctx, n.Name(), err)
	if err == nil {
		logger.Debug("Node completed.", "node", n.Name())
		return nil
	}

	key := g.errorKey(n, err)
	if _, seen := g.seenErrors[key]; seen {
		logger.Debug("Suppressing repeated node failure.", "node", n.Name(), "error", err)
		g.metrics.errorSuppressed(ctx, n.Name())
		return nil
	}
	g.seenErrors[key] = struct{}{}
	logger.Debug("Node failed.", "node", n.Name(), "error", err)
	return &HandlerError{Node: n, Err: err}
}

// finish moves the pump to StateDone. On success the names of the working
// set are consumed from the dirty sets; on failure they stay marked so the
// next pump retries them.
func (p *Pump) finish(ctx context.Context, err error) (State, error) {
	p.state = StateDone
	p.err = err
	if p.pending != nil {
		endSpan(p.pending.span, err)
		p.pending = nil
	}
	if err == nil {
		for _, name := range p.inputs {
			delete(p.g.dirtyInputs, name)
		}
		for _, name := range p.outputs {
			delete(p.g.dirtyOutputs, name)
		}
	}
	if p.span != nil {
		endSpan(p.span, err)
	}
	if !p.started.IsZero() {
		p.g.metrics.pumpFinished(ctx, time.Since(p.started).Seconds(), p.async)
	}
	ctxlog.FromContext(ctx).Debug("Pump finished.", "ok", err == nil)
	return StateDone, err
}

func (p *Pump) nodeSpan(ctx context.Context, n *node.Node) (context.Context, trace.Span) {
	if p.span != nil {
		ctx = trace.ContextWithSpan(ctx, p.span)
	}
	return tracer.Start(ctx, "graph.Node",
		trace.WithAttributes(
			attribute.String("graph.node", n.Name()),
			attribute.StringSlice("graph.dependencies", n.ResolvedDependencies()),
			attribute.String("graph.pump_id", p.id),
			attribute.Bool("graph.async", p.async && n.IsAsync()),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// arguments binds a node's declared dependencies to scope values. A name
// with no value yet is left out and the handler decides what that means.
func (g *Graph) arguments(n *node.Node) map[string]any {
	deps := n.Dependencies()
	args := make(map[string]any, len(deps))
	for _, dep := range deps {
		if v, ok := g.scope[n.Resolve(dep)]; ok {
			args[dep] = v
		}
	}
	return args
}

// write stores a handler result under the node's outputs. A single output
// receives the value as is. With several outputs a nil result clears all of
// them and a []any of matching length is zipped; anything else is an
// ErrOutputArity failure and nothing is written.
func (g *Graph) write(n *node.Node, v any) error {
	outputs := n.Outputs()
	switch {
	case len(outputs) == 1:
		g.scope[outputs[0]] = v
	case v == nil:
		for _, name := range outputs {
			g.scope[name] = nil
		}
	default:
		values, ok := v.([]any)
		if !ok || len(values) != len(outputs) {
			return fmt.Errorf("%w: %d outputs declared, got %T", ErrOutputArity, len(outputs), v)
		}
		for i, name := range outputs {
			g.scope[name] = values[i]
		}
	}
	return nil
}

func (g *Graph) errorKey(n *node.Node, err error) errorKey {
	switch g.dedup {
	case DedupByNode:
		return errorKey{node: n}
	case DedupByNodeAndMessage:
		return errorKey{node: n, message: err.Error()}
	default:
		return errorKey{message: err.Error()}
	}
}

// call invokes the handler, turning a panic into an error.
func call(ctx context.Context, n *node.Node, args map[string]any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.Handler()(ctx, args)
}
