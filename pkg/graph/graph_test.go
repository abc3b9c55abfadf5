package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
	_ "github.com/fluidize-dev/fluidize-engine/pkg/store/local"
)

func newLocalStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.New("local", nil)
	require.NoError(t, err)
	return s
}

func TestAddNodeUpsert(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "n1", Position: Position{X: 1, Y: 1}})
	g.AddNode(&Node{ID: "n1", Position: Position{X: 2, Y: 2}})

	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, 2.0, g.GetNode("n1").Position.X)
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "a"})
	g.AddNode(&Node{ID: "b"})
	require.NoError(t, g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "b"}))

	g.RemoveNode("a")

	assert.Nil(t, g.GetNode("a"))
	assert.Empty(t, g.Edges)
}

func TestAddEdgeMissingEndpoint(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "a"})

	err := g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "missing"})
	require.Error(t, err)
	assert.True(t, fluidizeerrors.Is(err, fluidizeerrors.CodeInvalidEdge))
}

func TestRemoveEdgeIdempotent(t *testing.T) {
	g := New()
	g.RemoveEdge("does-not-exist")
	g.AddNode(&Node{ID: "a"})
	g.AddNode(&Node{ID: "b"})
	require.NoError(t, g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "b"}))

	g.RemoveEdge("e1")
	g.RemoveEdge("e1")
	assert.Empty(t, g.Edges)
}

func TestValidateAndHeal(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "a"})
	g.AddNode(&Node{ID: "b"})
	require.NoError(t, g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "b"}))

	assert.True(t, g.Validate())

	// Force an orphan edge the way a stale on-disk file might produce one.
	g.Edges["e2"] = &Edge{ID: "e2", Source: "a", Target: "ghost"}
	assert.False(t, g.Validate())

	g.Heal()
	assert.True(t, g.Validate())
	assert.Len(t, g.Edges, 1)
}

func TestPredecessorsSorted(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: "a"})
	g.AddNode(&Node{ID: "b"})
	g.AddNode(&Node{ID: "c"})
	require.NoError(t, g.AddEdge(&Edge{ID: "e1", Source: "b", Target: "c"}))
	require.NoError(t, g.AddEdge(&Edge{ID: "e2", Source: "a", Target: "c"}))

	assert.Equal(t, []string{"a", "b"}, g.Predecessors("c"))
}

func TestFromFileMissingReturnsEmptyGraph(t *testing.T) {
	s := newLocalStore(t)
	g, err := FromFile(context.Background(), s, filepath.Join(t.TempDir(), "graph.json"))
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.json")

	g := New()
	g.AddNode(&Node{ID: "a", Data: NodeData{Label: "Alpha"}})
	g.AddNode(&Node{ID: "b", Data: NodeData{Label: "Beta"}})
	require.NoError(t, g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "b"}))
	require.NoError(t, g.SaveToFile(ctx, s, path))

	loaded, err := FromFile(ctx, s, path)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 2)
	assert.Len(t, loaded.Edges, 1)
	assert.Equal(t, "Alpha", loaded.GetNode("a").Data.Label)
}
