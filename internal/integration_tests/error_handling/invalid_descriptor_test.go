package integration_tests

import (
	"testing"

	"github.com/specialistvlad/modgen/internal/descriptor"
	"github.com/specialistvlad/modgen/internal/integration_tests/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandling_InvalidDescriptors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name: "syntax error",
			files: map[string]string{
				"Frameworks/Core/Framework.hcl":   ``,
				"Frameworks/Core/Util/Module.hcl": `dependencies = [`,
			},
			errContains: "Module.hcl",
		},
		{
			name: "unknown module type",
			files: map[string]string{
				"Frameworks/Core/Framework.hcl":   ``,
				"Frameworks/Core/Util/Module.hcl": `type = "spaceship"`,
			},
			errContains: "invalid module descriptor",
		},
		{
			name: "malformed dependency name",
			files: map[string]string{
				"Frameworks/Core/Framework.hcl":   ``,
				"Frameworks/Core/Util/Module.hcl": `dependencies = ["Util"]`,
			},
			errContains: "invalid module descriptor",
		},
		{
			name: "broken framework descriptor",
			files: map[string]string{
				"Frameworks/Core/Framework.hcl":   `excludes = `,
				"Frameworks/Core/Util/Module.hcl": ``,
			},
			errContains: "Framework.hcl",
		},
		{
			name: "broken project descriptor",
			files: map[string]string{
				"Build.hcl":                       `name = `,
				"Frameworks/Core/Framework.hcl":   ``,
				"Frameworks/Core/Util/Module.hcl": ``,
			},
			errContains: "Build.hcl",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			p := harness.New(t, tc.files)

			// --- Act ---
			res := p.Run()

			// --- Assert ---
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tc.errContains)
			assert.Contains(t, res.Err.Error(), "failed to load descriptors")
			assert.NoDirExists(t, p.Out, "nothing is written before descriptors load")
		})
	}
}

func TestErrorHandling_NoFrameworks(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, map[string]string{"Frameworks/README.md": "empty"})

	// --- Act ---
	res := p.Run()

	// --- Assert ---
	require.ErrorIs(t, res.Err, descriptor.ErrNoFrameworks)
}
