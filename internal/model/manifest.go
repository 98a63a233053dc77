// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Manifest structure and the decoding of a single HCL
// file into it.
package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/ctyconv"
	"github.com/specialistvlad/pumpgrid/internal/expr"
)

// Manifest is the content of one manifest file.
type Manifest struct {
	Path        string
	Definitions []*Definition
	Injections  []Injection
	Demand      []string
}

// Injection is an initial scope value declared in an `inject` block.
type Injection struct {
	Name  string
	Value any
	Range hcl.Range
}

// Values returns the manifest's injections as a map. Later declarations of
// the same name win.
func (m *Manifest) Values() map[string]any {
	out := make(map[string]any, len(m.Injections))
	for _, inj := range m.Injections {
		out[inj.Name] = inj.Value
	}
	return out
}

// hclManifestFile represents the top-level structure of a manifest file for
// decoding.
type hclManifestFile struct {
	Nodes   []*hclNode   `hcl:"node,block"`
	Injects []*hclInject `hcl:"inject,block"`
	Demand  []string     `hcl:"demand,optional"`
}

type hclInject struct {
	Body hcl.Body `hcl:",remain"`
}

// ParseFile parses and decodes the manifest at filePath.
func ParseFile(ctx context.Context, parser *hclparse.Parser, filePath string) (*Manifest, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}
	return decodeFile(ctx, hclFile, filePath)
}

// Parse parses and decodes a manifest held in memory. filename is only used
// in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*Manifest, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeFile(ctx, hclFile, filename)
}

func decodeFile(ctx context.Context, hclFile *hcl.File, filePath string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	var parsed hclManifestFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	m := &Manifest{Path: filePath, Demand: parsed.Demand}

	var diags hcl.Diagnostics
	seen := make(map[string]*hclNode, len(parsed.Nodes))
	for _, n := range parsed.Nodes {
		if prev, dup := seen[n.Name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate node",
				Detail:   fmt.Sprintf("A node named %q was already declared at %s.", n.Name, prev.DefRange),
				Subject:  n.DefRange.Ptr(),
			})
			continue
		}
		seen[n.Name] = n

		def, defDiags := newDefinition(n)
		diags = append(diags, defDiags...)
		if def != nil && !defDiags.HasErrors() {
			m.Definitions = append(m.Definitions, def)
		}
	}

	for _, block := range parsed.Injects {
		injections, injDiags := decodeInject(block)
		diags = append(diags, injDiags...)
		m.Injections = append(m.Injections, injections...)
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("error in manifest %s: %w", filePath, diags)
	}

	logger.Debug("Manifest decoded.",
		"file", filePath, "nodes", len(m.Definitions), "injections", len(m.Injections), "demand", m.Demand)
	return m, nil
}

// decodeInject evaluates every attribute of an `inject` block, in source
// order.
func decodeInject(block *hclInject) ([]Injection, hcl.Diagnostics) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	evalCtx := &hcl.EvalContext{Functions: expr.Functions()}
	out := make([]Injection, 0, len(ordered))
	for _, attr := range ordered {
		val, valDiags := attr.Expr.Value(evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		native, err := ctyconv.ToNative(val)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported injected value",
				Detail:   err.Error(),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		out = append(out, Injection{Name: attr.Name, Value: native, Range: attr.Range})
	}
	return out, diags
}
