package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("WB")
	assert.Len(t, g.nodes, 1)
	assert.Contains(t, g.nodes, "WB")

	g.AddNode("WB") // idempotent
	assert.Len(t, g.nodes, 1)
	assert.Equal(t, []string{"WB"}, g.order)

	g.AddNode("Enrt")
	assert.Equal(t, []string{"WB", "Enrt"}, g.order)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("WB")
		g.AddNode("Enrt")

		require.NoError(t, g.AddEdge("WB", "Enrt")) // Enrt depends on WB
		require.NoError(t, g.AddEdge("WB", "Enrt"))

		deps, err := g.Dependencies("Enrt")
		require.NoError(t, err)
		assert.Equal(t, []string{"WB"}, deps)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("a", "a"), "self-referential edge")

		_, err := g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name      string
		nodes     []string
		edges     [][2]string
		wantCycle string
	}{
		{name: "empty graph"},
		{name: "no edges", nodes: []string{"a", "b", "c"}},
		{
			name:  "valid dag with a transitive edge",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"}},
		},
		{
			name:      "direct cycle",
			nodes:     []string{"a", "b"},
			edges:     [][2]string{{"a", "b"}, {"b", "a"}},
			wantCycle: "a -> b -> a",
		},
		{
			name:      "longer cycle",
			nodes:     []string{"a", "b", "c", "d"},
			edges:     [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			wantCycle: "a -> d -> c -> b -> a",
		},
		{
			name:      "cycle in a disjoint component",
			nodes:     []string{"a", "b", "x", "y", "z"},
			edges:     [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			wantCycle: "y -> z -> y",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			g := New()
			for _, n := range tc.nodes {
				g.AddNode(n)
			}
			for _, e := range tc.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}

			// --- Act ---
			err := g.DetectCycles()

			// --- Assert ---
			if tc.wantCycle == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, "cycle detected")
			assert.ErrorContains(t, err, tc.wantCycle)
		})
	}
}
