package project

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	fluidizegraph "github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
	_ "github.com/fluidize-dev/fluidize-engine/pkg/store/local"
)

func newTestProcessor(t *testing.T) (*GraphProcessor, store.Store, paths.Layout) {
	t.Helper()
	s, err := store.New("local", nil)
	require.NoError(t, err)
	layout := paths.New(t.TempDir())
	return NewGraphProcessor("p1", s, layout, nil), s, layout
}

func TestEnsureGraphExists(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	require.NoError(t, gp.EnsureGraphExists(ctx))
	exists, err := s.Exists(ctx, layout.GraphPath("p1"))
	require.NoError(t, err)
	assert.True(t, exists)

	// Calling again must not clobber an existing graph.
	require.NoError(t, gp.EnsureGraphExists(ctx))
}

func TestInsertNodeWithoutSimulationID(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	n := &fluidizegraph.Node{ID: "node-a", Data: fluidizegraph.NodeData{Label: "A"}}
	require.NoError(t, gp.InsertNode(ctx, n))

	g := gp.GetGraph(ctx)
	assert.NotNil(t, g.GetNode("node-a"))

	nodePath := layout.NodePath("p1", "node-a", nil)
	exists, err := s.Exists(ctx, filepath.Join(nodePath, "parameters.json"))
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Exists(ctx, filepath.Join(nodePath, "properties.yaml"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertNodeWithTemplateCopiesWorkspace(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	templatePath := layout.SimulationPath("heat-2d", false)
	require.NoError(t, s.WriteYAML(ctx, filepath.Join(templatePath, "metadata.yaml"), map[string]string{"name": "heat-2d"}))
	require.NoError(t, s.WriteJSON(ctx, filepath.Join(templatePath, "main.sh"), "echo hi"))

	n := &fluidizegraph.Node{ID: "node-a", Data: fluidizegraph.NodeData{Label: "A", SimulationID: "heat-2d"}}
	require.NoError(t, gp.InsertNode(ctx, n))

	nodePath := layout.NodePath("p1", "node-a", nil)
	exists, err := s.Exists(ctx, filepath.Join(nodePath, "metadata.yaml"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertNodeTemplateNotFoundAbortsAtomically(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	n := &fluidizegraph.Node{ID: "node-a", Data: fluidizegraph.NodeData{Label: "A", SimulationID: "missing-template"}}
	err := gp.InsertNode(ctx, n)
	require.Error(t, err)
	assert.True(t, fluidizeerrors.Is(err, fluidizeerrors.CodeTemplateNotFound))

	// Unlike the original implementation's warn-and-continue, the graph
	// file must not have been touched at all.
	exists, existsErr := s.Exists(ctx, layout.GraphPath("p1"))
	require.NoError(t, existsErr)
	assert.False(t, exists)
}

func TestUpdateNodePosition(t *testing.T) {
	gp, _, _ := newTestProcessor(t)
	ctx := context.Background()

	n := &fluidizegraph.Node{ID: "node-a", Position: fluidizegraph.Position{X: 1, Y: 1}}
	require.NoError(t, gp.InsertNode(ctx, n))

	n.Position = fluidizegraph.Position{X: 5, Y: 9}
	require.NoError(t, gp.UpdateNodePosition(ctx, n))

	g := gp.GetGraph(ctx)
	assert.Equal(t, fluidizegraph.Position{X: 5, Y: 9}, g.GetNode("node-a").Position)
}

func TestDeleteNodeCascadesAndRemovesWorkspace(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	require.NoError(t, gp.InsertNode(ctx, &fluidizegraph.Node{ID: "a"}))
	require.NoError(t, gp.InsertNode(ctx, &fluidizegraph.Node{ID: "b"}))
	require.NoError(t, gp.UpsertEdge(ctx, &fluidizegraph.Edge{ID: "e1", Source: "a", Target: "b"}))

	require.NoError(t, gp.DeleteNode(ctx, "a"))

	g := gp.GetGraph(ctx)
	assert.Nil(t, g.GetNode("a"))
	assert.Empty(t, g.Edges)

	exists, err := s.Exists(ctx, layout.NodePath("p1", "a", nil))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpsertEdgeRejectsMissingEndpoint(t *testing.T) {
	gp, _, _ := newTestProcessor(t)
	ctx := context.Background()
	require.NoError(t, gp.InsertNode(ctx, &fluidizegraph.Node{ID: "a"}))

	err := gp.UpsertEdge(ctx, &fluidizegraph.Edge{ID: "e1", Source: "a", Target: "ghost"})
	require.Error(t, err)
	assert.True(t, fluidizeerrors.Is(err, fluidizeerrors.CodeInvalidEdge))
}

func TestDeleteEdgeIdempotent(t *testing.T) {
	gp, _, _ := newTestProcessor(t)
	ctx := context.Background()
	require.NoError(t, gp.DeleteEdge(ctx, "does-not-exist"))
}

func TestGetGraphSwallowsMalformedFile(t *testing.T) {
	gp, s, layout := newTestProcessor(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDirectory(ctx, layout.ProjectPath("p1")))
	require.NoError(t, s.WriteJSON(ctx, layout.GraphPath("p1"), "not-a-graph-object"))

	g := gp.GetGraph(ctx)
	assert.NotNil(t, g)
	assert.Empty(t, g.Nodes)
}
