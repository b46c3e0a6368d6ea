package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphOf(t *testing.T, names []string, edges ...[2]string) *Graph {
	t.Helper()
	g := New()
	for _, n := range names {
		g.AddNode(n)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAddNode_KeepsFirstPosition(t *testing.T) {
	g := graphOf(t, []string{"Core/Util", "Core/App", "Core/Util"})

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"Core/Util", "Core/App"}, g.order)
	assert.True(t, g.Has("Core/App"))
	assert.False(t, g.Has("Core/Missing"))
}

func TestAddEdge(t *testing.T) {
	t.Run("records prerequisites once", func(t *testing.T) {
		g := graphOf(t, []string{"Core/Util", "Core/App"},
			[2]string{"Core/Util", "Core/App"},
			[2]string{"Core/Util", "Core/App"},
		)

		prereqs, err := g.Prerequisites("Core/App")
		require.NoError(t, err)
		assert.Equal(t, []string{"Core/Util"}, prereqs)

		prereqs, err = g.Prerequisites("Core/Util")
		require.NoError(t, err)
		assert.Empty(t, prereqs)
	})

	t.Run("unknown names", func(t *testing.T) {
		g := graphOf(t, []string{"Core/App"})

		assert.ErrorContains(t, g.AddEdge("Core/Missing", "Core/App"), `prerequisite "Core/Missing" is not in the graph`)
		assert.ErrorContains(t, g.AddEdge("Core/App", "Core/Missing"), `target "Core/Missing" is not in the graph`)
		_, err := g.Prerequisites("Core/Missing")
		assert.ErrorContains(t, err, "is not in the graph")
	})

	t.Run("self edge is a cycle", func(t *testing.T) {
		g := graphOf(t, []string{"Core/App"})

		var cycleErr *CycleError
		require.ErrorAs(t, g.AddEdge("Core/App", "Core/App"), &cycleErr)
		assert.Equal(t, []string{"Core/App", "Core/App"}, cycleErr.Path)
	})
}

func TestPrerequisites_InsertionOrderAndCopy(t *testing.T) {
	g := graphOf(t, []string{"app", "z", "a", "m"},
		[2]string{"z", "app"},
		[2]string{"a", "app"},
		[2]string{"m", "app"},
	)

	prereqs, err := g.Prerequisites("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, prereqs)

	prereqs[0] = "mutated"
	again, _ := g.Prerequisites("app")
	assert.Equal(t, "z", again[0], "callers get a copy")
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []string
		edges [][2]string
		path  []string
	}{
		{name: "empty graph"},
		{name: "no edges", nodes: []string{"a", "b", "c"}},
		{
			name:  "diamond with transitive edge",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"}},
		},
		{
			name:  "two node cycle",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			path:  []string{"a", "b", "a"},
		},
		{
			name:  "full path of a longer cycle",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			path:  []string{"a", "d", "c", "b", "a"},
		},
		{
			name:  "cycle in a disjoint component",
			nodes: []string{"a", "b", "x", "y", "z"},
			edges: [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			path:  []string{"y", "z", "y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := graphOf(t, tc.nodes, tc.edges...)
			err := g.DetectCycles()
			if tc.path == nil {
				assert.NoError(t, err)
				return
			}
			var cycleErr *CycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tc.path, cycleErr.Path)
		})
	}
}

func TestCycleError_Message(t *testing.T) {
	err := &CycleError{Path: []string{"Core/A", "Core/B", "Core/A"}}
	assert.EqualError(t, err, "circular dependency: Core/A -> Core/B -> Core/A")
}
