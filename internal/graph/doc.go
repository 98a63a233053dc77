// Package graph implements an incremental, dependency-driven computation
// graph.
//
// # Model
//
// A graph holds nodes (see package node). Each node reads named quantities
// from a shared scope and writes its outputs back into it. A quantity's
// provider is the last registered node declaring it as an output, so a later
// registration overrides an earlier one. Quantities without a provider are
// open and can only arrive through Inject.
//
// # Rebuild
//
// Rebuild flattens the registration list, resolving deferred lists at that
// moment, and derives the indexes used by a pump:
//   - **providers:** quantity name to producing node
//   - **deps / revdeps:** direct provider and consumer edges
//   - **openDeps:** consumers of quantities without a provider
//   - **rolling sets:** per quantity, every node that must re-run when it
//     changes, and the producer plus downstream when it is wanted
//
// Providers are resolved in one forward pass, so the graph is acyclic by
// construction. A consumer registered before its provider is rejected, or
// merely logged under OrderLenient.
//
// # Pump
//
// A pump turns the dirty sets into a candidate set and walks the nodes in
// registration order, invoking each candidate with its bound arguments.
// Lazy nodes only run when a non-lazy candidate depends on them. In
// asynchronous mode nodes flagged Async run on the executor and the pump
// suspends until their result is ready, which lets a host loop drive it
// through PumpTick without blocking.
//
// A failing node aborts the pump with a *HandlerError. The same failure is
// surfaced only once; repeats are logged and skipped according to the
// DedupPolicy.
//
// # Concurrency
//
// A Graph is single-threaded. Asynchronous nodes receive their arguments by
// value and never touch the scope; their results are written back by the
// pump on the caller's goroutine.
package graph
