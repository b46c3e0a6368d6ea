package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/modgen/internal/integration_tests/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainTree() map[string]string {
	return map[string]string{
		"Frameworks/Core/Framework.hcl":     ``,
		"Frameworks/Core/Util/Module.hcl":   `type = "library"`,
		"Frameworks/Core/App/Module.hcl":    "type = \"executable\"\ndependencies = [\"Core/Util\"]\n",
		"Frameworks/Core/Plugin/Module.hcl": "type = \"plugin\"\ndependencies = [\"Core/App\"]\n",
	}
}

func TestOrdering_DependencyChain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, chainTree())

	// --- Act ---
	report := p.MustRun()

	// --- Assert ---
	assert.Equal(t, []string{"Core/Util", "Core/App", "Core/Plugin"}, report.Sorted)

	// The module list follows the emission order.
	list := p.ReadOut("gen/modules.cmake")
	util := strings.Index(list, "Core/Util")
	app := strings.Index(list, "Core/App")
	plugin := strings.Index(list, "Core/Plugin")
	require.True(t, util >= 0 && app >= 0 && plugin >= 0, "all targets listed:\n%s", list)
	assert.Less(t, util, app)
	assert.Less(t, app, plugin)

	assert.Contains(t, p.ReadOut("gen/Core/Plugin/CMakeLists.txt"), "Core_App")
}

func TestOrdering_ReferencesComeFirst(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, map[string]string{
		"Frameworks/Core/Framework.hcl":   ``,
		"Frameworks/Core/App/Module.hcl":  "type = \"executable\"\nreferences = [\"Tools/Gen\"]\ndependencies = [\"Core/Util\"]\n",
		"Frameworks/Core/Util/Module.hcl": ``,
		"Frameworks/Tools/Framework.hcl":  ``,
		"Frameworks/Tools/Gen/Module.hcl": `type = "executable"`,
	})

	// --- Act ---
	report := p.MustRun()

	// --- Assert ---
	assert.Equal(t, []string{"Tools/Gen", "Core/Util", "Core/App"}, report.Sorted)
}

func TestOrdering_ParallelWorkersMatchSerialOrderConstraints(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := chainTree()
	files["Frameworks/Core/Math/Module.hcl"] = ``
	files["Frameworks/Core/Game/Module.hcl"] = "type = \"executable\"\ndependencies = [\"Core/Math\", \"Core/Util\"]\n"
	p := harness.New(t, files)

	// --- Act ---
	report := p.MustRun(harness.Workers(4))

	// --- Assert ---
	require.Len(t, report.Sorted, 5)
	pos := make(map[string]int, len(report.Sorted))
	for i, name := range report.Sorted {
		pos[name] = i
	}
	assert.Less(t, pos["Core/Util"], pos["Core/App"])
	assert.Less(t, pos["Core/App"], pos["Core/Plugin"])
	assert.Less(t, pos["Core/Math"], pos["Core/Game"])
	assert.Less(t, pos["Core/Util"], pos["Core/Game"])

	for _, name := range report.Sorted {
		assert.FileExists(t, p.OutPath("gen/"+name+"/CMakeLists.txt"))
	}
}

func TestOrdering_DisabledModuleStillListed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := chainTree()
	files["Frameworks/Core/Plugin/Module.hcl"] = "type = \"plugin\"\ndisabled = true\ndependencies = [\"Core/App\"]\n"
	p := harness.New(t, files)

	// --- Act ---
	report := p.MustRun()

	// --- Assert ---
	assert.Equal(t, []string{"Core/Util", "Core/App", "Core/Plugin"}, report.Sorted)
	assert.Contains(t, p.ReadOut("gen/modules.cmake"), "# Core/Plugin is disabled")
	assert.Contains(t, p.ReadOut("gen/Core/Plugin/CMakeLists.txt"), "add_library(Core_Plugin INTERFACE)")
}
