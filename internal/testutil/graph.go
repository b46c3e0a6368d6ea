package testutil

import (
	"testing"

	"github.com/specialistvlad/modgen/internal/model"
	"github.com/stretchr/testify/require"
)

// ModuleSpec describes a module for BuildGraph.
type ModuleSpec struct {
	Framework    string
	Name         string
	Type         model.ModuleType
	Dependencies []string
	References   []string
	Fetches      []model.Fetch
	Disabled     bool
	Content      string
}

// BuildGraph appends the given modules in order, opening a new framework
// whenever the framework name changes, and freezes the result.
func BuildGraph(t *testing.T, specs ...ModuleSpec) *model.Graph {
	t.Helper()
	s := model.NewScanContext()
	current := ""
	for _, spec := range specs {
		if spec.Framework != current || s.CurrentFramework() == nil {
			_, err := s.AddFramework(spec.Framework, "/src/"+spec.Framework, nil)
			require.NoError(t, err)
			current = spec.Framework
		}
		_, err := s.AddModule(spec.Name, "/src/"+spec.Framework+"/"+spec.Name)
		require.NoError(t, err)
		mod := s.CurrentModule()
		mod.Type = spec.Type
		mod.Dependencies = spec.Dependencies
		mod.References = spec.References
		mod.Fetches = spec.Fetches
		mod.Disabled = spec.Disabled
		content := spec.Content
		if content == "" {
			content = spec.Framework + "/" + spec.Name
		}
		mod.Content = []byte(content)
	}
	g, err := s.Freeze()
	require.NoError(t, err)
	return g
}
