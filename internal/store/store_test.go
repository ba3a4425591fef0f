package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/internal/store"
)

func newGraph(t *testing.T) (*store.MemoryStore[string, string], graph.Graph[string, string]) {
	t.Helper()

	st := store.NewMemoryStore[string, string]()
	gra := graph.NewWithStore(graph.StringHash, st, graph.Directed(), graph.PreventCycles())
	for _, v := range []string{"topo", "rigid_1", "flex_1", "flex_2"} {
		require.NoError(t, gra.AddVertex(v))
	}
	require.NoError(t, gra.AddEdge("topo", "rigid_1"))
	require.NoError(t, gra.AddEdge("rigid_1", "flex_1"))
	require.NoError(t, gra.AddEdge("rigid_1", "flex_2"))

	return st, gra
}

func TestMemoryStoreOrder(t *testing.T) {
	t.Parallel()

	st, _ := newGraph(t)

	vertices, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"topo", "rigid_1", "flex_1", "flex_2"}, vertices)

	edges, err := st.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "rigid_1", edges[1].Source)
	assert.Equal(t, "flex_1", edges[1].Target)
	assert.Equal(t, "flex_2", edges[2].Target)

	sources, err := st.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"topo"}, sources)
}

func TestMemoryStorePreventsCycles(t *testing.T) {
	t.Parallel()

	st, gra := newGraph(t)

	cycle, err := st.CreatesCycle("flex_1", "topo")
	require.NoError(t, err)
	assert.True(t, cycle)

	cycle, err = st.CreatesCycle("flex_1", "flex_2")
	require.NoError(t, err)
	assert.False(t, cycle)

	assert.ErrorIs(t, gra.AddEdge("flex_2", "topo"), graph.ErrEdgeCreatesCycle)
}

func TestMemoryStoreUpdateVertex(t *testing.T) {
	t.Parallel()

	st, gra := newGraph(t)

	require.NoError(t, st.UpdateVertex("flex_1", graph.VertexAttribute("color", "#f00000")))
	_, props, err := gra.VertexWithProperties("flex_1")
	require.NoError(t, err)
	assert.Equal(t, "#f00000", props.Attributes["color"])

	assert.ErrorIs(t, st.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestMemoryStoreRemove(t *testing.T) {
	t.Parallel()

	st, gra := newGraph(t)

	assert.ErrorIs(t, gra.RemoveVertex("flex_2"), graph.ErrVertexHasEdges)
	require.NoError(t, gra.RemoveEdge("rigid_1", "flex_2"))
	require.NoError(t, gra.RemoveVertex("flex_2"))

	count, err := st.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = st.Edge("rigid_1", "flex_2")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)
}

func TestMemoryStoreUnknownVertex(t *testing.T) {
	t.Parallel()

	st, _ := newGraph(t)

	_, err := st.CreatesCycle("topo", "missing")
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)

	assert.ErrorIs(t, st.UpdateEdge("flex_1", "topo", graph.Edge[string]{}), graph.ErrEdgeNotFound)
	assert.ErrorIs(t, st.RemoveVertex("missing"), graph.ErrVertexNotFound)
}
