// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of pumpgrid HCL manifests.
// It parses the raw files into a strongly-typed, in-memory model and turns
// each declared node into a graph node.
//
// # Core Concepts
//
//   - Manifest: everything declared in one .hcl file: node definitions,
//     initial injections and demanded outputs, in file order.
//
//   - Definition: one `node` block. Its `value` expression is the handler
//     body; the root names the expression references become the node's
//     dependencies.
//
//   - Injection: one attribute of an `inject` block, evaluated once at load
//     time.
//
// A manifest file looks like this:
//
//	node "y" {
//	  value = x + 1
//	}
//
//	node "stats" {
//	  outputs = ["lo", "hi"]
//	  value   = [min(a, b), max(a, b)]
//	  remap   = { a = "y" }
//	}
//
//	inject {
//	  x = 1
//	  b = 10
//	}
//
//	demand = ["hi"]
//
// Static checks happen here, before any expression runs: duplicate node
// names, unsupported functions, remap keys that are not dependencies and
// empty output lists are all reported with their source range.
package model
