package output

import (
	"strings"
	"testing"

	"github.com/specialistvlad/modgen/internal/model"
	"github.com/specialistvlad/modgen/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDependencyTree_Render(t *testing.T) {
	g := testutil.BuildGraph(t,
		testutil.ModuleSpec{Framework: "Core", Name: "App", Type: model.TypeExecutable,
			Dependencies: []string{"Core/Util"}, References: []string{"Tools/Gen"}},
		testutil.ModuleSpec{Framework: "Core", Name: "Util", Fetches: []model.Fetch{{Name: "zlib"}}},
		testutil.ModuleSpec{Framework: "Tools", Name: "Gen", Disabled: true},
	)

	out := NewDependencyTree("Game", g).Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "Game", lines[0])
	for _, want := range []string{
		"Core",
		"App [executable]",
		"ref Tools/Gen",
		"dep Core/Util",
		"Util [library]",
		"fetch zlib",
		"Tools",
		"Gen [library] (disabled)",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "ref Tools/Gen"), strings.Index(out, "dep Core/Util"),
		"references are listed before dependencies")
	assert.Less(t, strings.Index(out, "App [executable]"), strings.Index(out, "Util [library]"))
}
