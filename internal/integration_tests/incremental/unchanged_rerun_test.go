package integration_tests

import (
	"os"
	"testing"

	"github.com/specialistvlad/modgen/internal/integration_tests/harness"
	"github.com/specialistvlad/modgen/internal/runstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncremental_UnchangedRerun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, singleModuleTree())
	p.MustRun()

	metaFiles := []string{"cache/compiler.hcl", "cache/timestamps.hcl", "cache/project.hcl"}
	before := make(map[string]os.FileInfo)
	contents := make(map[string]string)
	for _, f := range metaFiles {
		info, err := os.Stat(p.OutPath(f))
		require.NoError(t, err)
		before[f] = info
		contents[f] = p.ReadOut(f)
	}
	lists := p.ReadOut("gen/Core/Util/CMakeLists.txt")

	// --- Act ---
	report := p.MustRun()

	// --- Assert ---
	assert.False(t, report.Flags.IsDirty)
	assert.False(t, report.Flags.MetaMissing)
	assert.False(t, report.Flags.DeleteBuilds)
	assert.Equal(t, runstate.Proceed, report.Outcome)
	assert.False(t, report.MetaWritten, "a clean run never writes the meta store")
	assert.Empty(t, report.Regenerated)

	for _, f := range metaFiles {
		info, err := os.Stat(p.OutPath(f))
		require.NoError(t, err)
		assert.Equal(t, before[f].ModTime(), info.ModTime(), "%s must be left untouched", f)
		assert.Equal(t, contents[f], p.ReadOut(f))
	}
	assert.Equal(t, lists, p.ReadOut("gen/Core/Util/CMakeLists.txt"))
}

func TestIncremental_DigestStability(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Several modules, one of which changes. Only that one is regenerated.
	p := harness.New(t, map[string]string{
		"Frameworks/Core/Framework.hcl":   ``,
		"Frameworks/Core/Util/Module.hcl": utilDescriptor,
		"Frameworks/Core/Math/Module.hcl": `type = "library"`,
		"Frameworks/Core/App/Module.hcl":  "type = \"executable\"\ndependencies = [\"Core/Util\", \"Core/Math\"]\n",
		"Frameworks/Tools/Framework.hcl":  ``,
		"Frameworks/Tools/Gen/Module.hcl": `type = "executable"`,
	})
	p.MustRun()

	// --- Act ---
	p.Write(map[string]string{"Frameworks/Core/Math/Module.hcl": "type = \"library\"\n# tweaked\n"})
	report := p.MustRun()

	// --- Assert ---
	assert.Equal(t, []string{"Core/Math"}, report.Regenerated)
	assert.True(t, report.Flags.IsDirty)
	assert.Equal(t, runstate.RegenerationRequired, report.Outcome)
}
