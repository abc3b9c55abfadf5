package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
	_ "github.com/fluidize-dev/fluidize-engine/pkg/store/local"
)

func TestGetStatusFallsBackToPersistedMetadata(t *testing.T) {
	s, err := store.New("local", nil)
	require.NoError(t, err)
	layout := paths.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.CreateDirectory(ctx, layout.RunPath("p1", 1)))
	require.NoError(t, s.WriteYAML(ctx, layout.RunMetadataPath("p1", 1), project.RunMetadata{
		Name:      "r",
		CreatedAt: time.Now(),
		Status:    "completed",
	}))

	runs := NewRuns(s, layout, NewSupervisor())
	snapshot, err := runs.GetStatus(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "completed", snapshot.Status)
	assert.Empty(t, snapshot.Nodes)
}

func TestGetStatusPrefersLiveSupervisorState(t *testing.T) {
	s, err := store.New("local", nil)
	require.NoError(t, err)
	layout := paths.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.CreateDirectory(ctx, layout.RunPath("p1", 1)))
	require.NoError(t, s.WriteYAML(ctx, layout.RunMetadataPath("p1", 1), project.RunMetadata{
		Name:   "r",
		Status: "running",
	}))

	supervisor := NewSupervisor()
	supervisor.register("p1", 1, func() {})
	supervisor.recordOutcome("p1", 1, NodeOutcome{NodeID: "a", Status: "success"})

	runs := NewRuns(s, layout, supervisor)
	snapshot, err := runs.GetStatus(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "running", snapshot.Status)
	require.Len(t, snapshot.Nodes, 1)
	assert.Equal(t, "a", snapshot.Nodes[0].NodeID)
}

func TestGetStatusUnknownRunErrors(t *testing.T) {
	s, err := store.New("local", nil)
	require.NoError(t, err)
	layout := paths.New(t.TempDir())

	runs := NewRuns(s, layout, NewSupervisor())
	_, err = runs.GetStatus(context.Background(), "p1", 99)
	require.Error(t, err)
}
