// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file discovers manifest files on disk and parses the `-set` style
// assignments given on the command line.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/ctyconv"
	"github.com/specialistvlad/pumpgrid/internal/expr"
	"github.com/specialistvlad/pumpgrid/internal/fsutil"
)

// LoadManifestsRecursively finds and parses every .hcl file under path, in
// lexical order. path may also name a single file.
func LoadManifestsRecursively(ctx context.Context, path string) ([]*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests from path", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find manifest files in %s: %w", path, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", path)
		return nil, nil
	}

	parser := hclparse.NewParser()
	manifests := make([]*Manifest, 0, len(files))
	for _, file := range files {
		m, err := ParseFile(ctx, parser, file)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}

	logger.Info("Manifests loaded.", "files", len(manifests))
	return manifests, nil
}

// ParseAssignment parses `name=<hcl expression>` and evaluates the expression
// with the node function table. The name must be a valid identifier.
func ParseAssignment(s string) (string, any, error) {
	name, src, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid assignment %q: expected name=<expression>", s)
	}
	if !hclsyntax.ValidIdentifier(name) {
		return "", nil, fmt.Errorf("invalid assignment %q: %q is not a valid name", s, name)
	}

	e, diags := hclsyntax.ParseExpression([]byte(src), "<set "+name+">", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", nil, fmt.Errorf("invalid assignment %q: %w", s, diags)
	}
	val, diags := e.Value(&hcl.EvalContext{Functions: expr.Functions()})
	if diags.HasErrors() {
		return "", nil, fmt.Errorf("invalid assignment %q: %w", s, diags)
	}
	native, err := ctyconv.ToNative(val)
	if err != nil {
		return "", nil, fmt.Errorf("invalid assignment %q: %w", s, err)
	}
	return name, native, nil
}
