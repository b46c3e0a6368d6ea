package integration_tests

import (
	"testing"

	"github.com/specialistvlad/modgen/internal/integration_tests/harness"
	"github.com/specialistvlad/modgen/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandling_DanglingReference(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, map[string]string{
		"Frameworks/Core/Framework.hcl":  ``,
		"Frameworks/Core/App/Module.hcl": `references = ["Core/Missing"]`,
	})

	// --- Act ---
	res := p.Run()

	// --- Assert ---
	require.Error(t, res.Err)
	var dangling *processor.DanglingError
	require.ErrorAs(t, res.Err, &dangling)
	assert.Equal(t, "Core/App", dangling.Target)
	assert.Equal(t, "Core/Missing", dangling.Name)
	assert.Equal(t, processor.KindReference, dangling.Kind)
	assert.Contains(t, res.Err.Error(), `"Core/Missing" is not a valid module`)
	assert.Nil(t, res.Report)

	assert.NoFileExists(t, p.OutPath("cache/timestamps.hcl"), "a fatal run writes no meta store")
	assert.NoFileExists(t, p.OutPath("gen/modules.cmake"))
}

func TestErrorHandling_DanglingDependencyKeepsPreviousMeta(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := harness.New(t, map[string]string{
		"Frameworks/Core/Framework.hcl":  ``,
		"Frameworks/Core/App/Module.hcl": ``,
	})
	p.MustRun()
	before := p.ReadOut("cache/timestamps.hcl")

	// --- Act ---
	p.Write(map[string]string{"Frameworks/Core/App/Module.hcl": `dependencies = ["Core/Gone"]`})
	res := p.Run()

	// --- Assert ---
	var dangling *processor.DanglingError
	require.ErrorAs(t, res.Err, &dangling)
	assert.Equal(t, processor.KindDependency, dangling.Kind)
	assert.Equal(t, before, p.ReadOut("cache/timestamps.hcl"), "the previous record survives a fatal run")

	// Once the descriptor is fixed the change is picked up again.
	p.Write(map[string]string{"Frameworks/Core/App/Module.hcl": `type = "library"`})
	report := p.MustRun()
	assert.Equal(t, []string{"Core/App"}, report.Regenerated)
}
