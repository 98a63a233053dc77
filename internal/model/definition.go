// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Definition, the model of a `node` block, and its
// translation into a graph node.
package model

import (
	"fmt"
	"slices"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pumpgrid/internal/expr"
	"github.com/specialistvlad/pumpgrid/internal/node"
)

// Definition is the format-agnostic representation of a `node` block.
type Definition struct {
	Name         string
	Outputs      []string
	Dependencies []string
	Remap        map[string]string
	Lazy         bool
	Async        bool
	Value        hcl.Expression
	Expressions  *expr.Container
	DefRange     hcl.Range
}

// hclNode captures a `node` block for decoding.
type hclNode struct {
	Name     string            `hcl:"name,label"`
	Value    hcl.Expression    `hcl:"value"`
	Outputs  []string          `hcl:"outputs,optional"`
	Remap    map[string]string `hcl:"remap,optional"`
	Lazy     bool              `hcl:"lazy,optional"`
	Async    bool              `hcl:"async,optional"`
	Depends  []string          `hcl:"depends,optional"`
	DefRange hcl.Range         `hcl:",def_range"`
}

func newDefinition(n *hclNode) (*Definition, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	container := expr.NewContainer(n.Value)

	if err := expr.CheckFunctions(container.CalledFunctions()); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported function",
			Detail:   err.Error(),
			Subject:  n.Value.Range().Ptr(),
		})
	}

	if n.Outputs != nil && len(n.Outputs) == 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Empty outputs",
			Detail:   fmt.Sprintf("Node %q declares an empty outputs list; omit it to default to the node name.", n.Name),
			Subject:  n.DefRange.Ptr(),
		})
	}

	deps := mergeNames(container.RootNames(), n.Depends)
	remapKeys := make([]string, 0, len(n.Remap))
	for k := range n.Remap {
		remapKeys = append(remapKeys, k)
	}
	sort.Strings(remapKeys)
	for _, k := range remapKeys {
		if !slices.Contains(deps, k) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid remap",
				Detail:   fmt.Sprintf("Node %q remaps %q, which its value does not reference.", n.Name, k),
				Subject:  n.DefRange.Ptr(),
			})
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}

	return &Definition{
		Name:         n.Name,
		Outputs:      n.Outputs,
		Dependencies: deps,
		Remap:        n.Remap,
		Lazy:         n.Lazy,
		Async:        n.Async,
		Value:        n.Value,
		Expressions:  container,
		DefRange:     n.DefRange,
	}, diags
}

// Node builds the graph node for d. Its handler evaluates the value
// expression with the bound arguments.
func (d *Definition) Node() *node.Node {
	opts := []node.Option{node.WithDependencies(d.Dependencies...)}
	if len(d.Outputs) > 0 {
		opts = append(opts, node.WithOutputs(d.Outputs...))
	}
	if len(d.Remap) > 0 {
		opts = append(opts, node.WithRemap(d.Remap))
	}
	if d.Lazy {
		opts = append(opts, node.Lazy())
	}
	if d.Async {
		opts = append(opts, node.Async())
	}
	return node.New(d.Name, expr.Handler(d.Value), opts...)
}

// mergeNames returns the sorted union of both lists.
func mergeNames(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	sort.Strings(out)
	return slices.Compact(out)
}
