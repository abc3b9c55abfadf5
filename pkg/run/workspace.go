package run

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	fluidizegraph "github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// Workspace materializes a run's on-disk tree: runs/run_<n>/, its
// metadata.yaml, and a per-node inputs/outputs/source directory copied from
// the node's project-level workspace so execution never mutates the
// canonical copy.
type Workspace struct {
	store  store.Store
	layout paths.Layout
}

// NewWorkspace constructs a Workspace over s rooted at layout.
func NewWorkspace(s store.Store, layout paths.Layout) *Workspace {
	return &Workspace{store: s, layout: layout}
}

// PrepareRun allocates the next run number for projectID (serialized via
// projectLock per spec.md §5), creates runs/run_<n>/, writes its
// metadata.yaml in "running" status, and materializes every node in g under
// the run directory with inputs/, outputs/, and a copy of the node's
// canonical source/ workspace.
func (w *Workspace) PrepareRun(ctx context.Context, projectID string, g *fluidizegraph.Graph, payload StartPayload) (int, string, error) {
	lock := projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	runNumber, err := w.nextRunNumber(ctx, projectID)
	if err != nil {
		return 0, "", err
	}

	runPath := w.layout.RunPath(projectID, runNumber)
	if err := w.store.CreateDirectory(ctx, runPath); err != nil {
		return 0, "", err
	}

	handle := newRunHandle()
	metadata := project.RunMetadata{
		Handle:      handle,
		Name:        payload.Name,
		Description: payload.Description,
		Tags:        payload.Tags,
		CreatedAt:   time.Now(),
		Status:      "running",
	}
	if err := w.store.WriteYAML(ctx, w.layout.RunMetadataPath(projectID, runNumber), metadata); err != nil {
		return 0, "", err
	}

	for _, node := range g.Nodes {
		if err := w.materializeNode(ctx, projectID, node.ID, runNumber); err != nil {
			return 0, "", err
		}
	}

	return runNumber, handle, nil
}

// materializeNode creates the run-scoped copy of a single node's workspace:
// inputs/, outputs/, and source/ (cloned from the project-level workspace
// if present).
func (w *Workspace) materializeNode(ctx context.Context, projectID, nodeID string, runNumber int) error {
	run := runNumber
	if err := w.store.CreateDirectory(ctx, w.layout.NodeInputsPath(projectID, nodeID, &run)); err != nil {
		return err
	}
	if err := w.store.CreateDirectory(ctx, w.layout.NodeOutputsPath(projectID, nodeID, &run)); err != nil {
		return err
	}

	canonicalPath := w.layout.NodePath(projectID, nodeID, nil)
	exists, err := w.store.Exists(ctx, canonicalPath)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	sourcePath := w.layout.NodeSourcePath(projectID, nodeID, &run)
	if err := w.store.CopyDirectory(ctx, canonicalPath, sourcePath); err != nil {
		return err
	}

	// properties.yaml and parameters.json are read from the run-scoped node
	// path directly, not nested under source/; the execution strategy's
	// Prepare reads properties.yaml from there, so copy them up one level.
	runNodePath := w.layout.NodePath(projectID, nodeID, &run)
	if err := w.copyYAMLLeaf(ctx, canonicalPath, runNodePath, "properties.yaml"); err != nil {
		return err
	}
	return w.copyJSONLeaf(ctx, canonicalPath, runNodePath, "parameters.json")
}

func (w *Workspace) copyYAMLLeaf(ctx context.Context, canonicalNodePath, runNodePath, name string) error {
	src := filepath.Join(canonicalNodePath, name)
	exists, err := w.store.Exists(ctx, src)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	var doc map[string]interface{}
	if err := w.store.ReadYAML(ctx, src, &doc); err != nil {
		return err
	}
	return w.store.WriteYAML(ctx, filepath.Join(runNodePath, name), doc)
}

func (w *Workspace) copyJSONLeaf(ctx context.Context, canonicalNodePath, runNodePath, name string) error {
	src := filepath.Join(canonicalNodePath, name)
	exists, err := w.store.Exists(ctx, src)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	var doc map[string]interface{}
	if err := w.store.ReadJSON(ctx, src, &doc); err != nil {
		return err
	}
	return w.store.WriteJSON(ctx, filepath.Join(runNodePath, name), doc)
}

// nextRunNumber returns 1 + the highest existing run_<n> directory under
// projectID's runs_path, or 1 if none exist.
func (w *Workspace) nextRunNumber(ctx context.Context, projectID string) (int, error) {
	names, err := w.store.ListDirectories(ctx, w.layout.RunsPath(projectID))
	if err != nil {
		return 0, err
	}

	max := 0
	for _, name := range names {
		n, ok := parseRunDirName(name)
		if ok && n > max {
			max = n
		}
	}
	return max + 1, nil
}

func parseRunDirName(name string) (int, bool) {
	const prefix = "run_"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
