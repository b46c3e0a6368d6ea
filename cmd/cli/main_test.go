package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/modgen/internal/cli"
	"github.com/specialistvlad/modgen/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestRun_RegenerationRequiredThenProceed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.NewTree(t, map[string]string{
		"Frameworks/Core/Framework.hcl":   ``,
		"Frameworks/Core/Util/Module.hcl": `type = "library"`,
	})
	args := []string{"-log-format", "text", root}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	// The first run generates everything, so the build must restart.
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, cli.ExitRegenerationRequired, exitErr.Code)
	require.FileExists(t, filepath.Join(root, "out", "gen", "modules.cmake"))

	// Nothing changed, so the second run lets the build proceed.
	require.NoError(t, run(context.Background(), out, args))
}

func TestRun_FatalError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A module descriptor with a syntax error aborts the run.
	root := testutil.NewTree(t, map[string]string{
		"Frameworks/Core/Framework.hcl":   ``,
		"Frameworks/Core/Util/Module.hcl": `dependencies = [`,
	})
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{root})

	// --- Assert ---
	require.Error(t, err)
	var exitErr *cli.ExitError
	require.False(t, errors.As(err, &exitErr), "fatal errors are not exit errors")
	require.Contains(t, err.Error(), "Module.hcl")
}

func TestRun_Tree(t *testing.T) {
	t.Parallel()

	root := testutil.NewTree(t, map[string]string{
		"Frameworks/Core/Framework.hcl":   ``,
		"Frameworks/Core/Util/Module.hcl": ``,
	})
	out := &bytes.Buffer{}

	require.NoError(t, run(context.Background(), out, []string{"-tree", "-log-level", "error", root}))
	require.Contains(t, out.String(), "Util [library]")
	require.NoDirExists(t, filepath.Join(root, "out"))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
