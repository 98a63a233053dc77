package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pumpgrid/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600), "failed to set up test file")
	return path
}

func TestRun_PrintsScope(t *testing.T) {
	t.Parallel()

	path := writeGraph(t, `
node "area" {
  value = w * h
}

inject {
  w = 3
  h = 4
}
`)
	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{"-set", "h=5", path})

	require.NoError(t, err)
	assert.JSONEq(t, `{"area":15,"h":5,"w":3}`, out.String())
	assert.Contains(t, logs.String(), `"msg":"Graph loaded successfully."`)
}

func TestRun_ParseFailureIsRuntimeError(t *testing.T) {
	t.Parallel()

	// The block is never closed.
	path := writeGraph(t, `
node "y" {
  value = 1
`)
	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{path})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, exitErr.Message, "failed to load graph")
	assert.Empty(t, out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	assert.Contains(t, logs.String(), "Usage:", "Expected help text to be printed to the log writer")
	assert.Empty(t, out.String())
}

func TestRun_UsageError(t *testing.T) {
	t.Parallel()

	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{"-order", "random", "g.hcl"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
