package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanContext_AddModuleWithoutFramework(t *testing.T) {
	s := NewScanContext()
	_, err := s.AddModule("Util", "/x")
	assert.ErrorContains(t, err, "before any framework")
	assert.Nil(t, s.CurrentModule())
}

func TestScanContext_CurrentSurvivesGrowth(t *testing.T) {
	s := NewScanContext()
	_, err := s.AddFramework("Core", "/src/Core", nil)
	require.NoError(t, err)

	// Append enough modules to force several reallocations; the current
	// module must always be the last one added.
	for i := range 64 {
		name := string(rune('A'+i%26)) + string(rune('a'+i/26))
		idx, err := s.AddModule(name, "/src/Core/"+name)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
		require.NotNil(t, s.CurrentModule())
		assert.Equal(t, name, s.CurrentModule().Name)
	}
}

func TestFreeze(t *testing.T) {
	s := NewScanContext()
	_, err := s.AddFramework("Core", "/src/Core", []string{"Legacy"})
	require.NoError(t, err)
	_, err = s.AddModule("Util", "/src/Core/Util")
	require.NoError(t, err)
	s.CurrentModule().Content = []byte("type = \"library\"")
	_, err = s.AddModule("Legacy", "/src/Core/Legacy")
	require.NoError(t, err)
	s.CurrentModule().Excluded = true
	s.CurrentModule().Disabled = true

	_, err = s.AddFramework("Engine", "/src/Engine", nil)
	require.NoError(t, err)
	_, err = s.AddModule("Render", "/src/Engine/Render")
	require.NoError(t, err)

	g, err := s.Freeze()
	require.NoError(t, err)

	assert.Equal(t, []string{"Core/Util", "Engine/Render"}, g.Names())
	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Frameworks()[0].Modules, 2, "excluded modules still occupy a slot")

	util, ok := g.Target("Core/Util")
	require.True(t, ok)
	assert.Equal(t, Digest([]byte("type = \"library\"")), util.Digest)
	assert.Equal(t, "Util", g.Module(util).Name)
	assert.Equal(t, "Core", g.Framework(util).Name)

	render, ok := g.Target("Engine/Render")
	require.True(t, ok)
	assert.Equal(t, 1, render.FrameworkIndex)
	assert.Equal(t, 0, render.ModuleIndex)

	_, ok = g.Target("Core/Legacy")
	assert.False(t, ok)

	t.Run("frozen context rejects appends", func(t *testing.T) {
		_, err := s.AddFramework("Late", "/src/Late", nil)
		assert.ErrorIs(t, err, ErrFrozen)
		_, err = s.AddModule("Late", "/src/Late")
		assert.ErrorIs(t, err, ErrFrozen)
		_, err = s.Freeze()
		assert.ErrorIs(t, err, ErrFrozen)
	})
}

func TestFreeze_DuplicateTarget(t *testing.T) {
	s := NewScanContext()
	_, _ = s.AddFramework("Core", "/a", nil)
	_, _ = s.AddModule("Util", "/a/Util")
	_, _ = s.AddFramework("Core", "/b", nil)
	_, _ = s.AddModule("Util", "/b/Util")

	_, err := s.Freeze()
	assert.ErrorContains(t, err, `duplicate target "Core/Util"`)
}
