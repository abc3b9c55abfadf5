package run

import (
	"context"

	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// Runs implements the supplemented GetStatus surface: spec.md §6 names
// get_status(n) without defining its return shape, so we read the run's
// metadata.yaml plus, while the run is active, the supervisor's live node
// outcomes. Once a run finishes its supervisor entry is dropped, so only the
// run-level status from metadata.yaml is reported and no per-node outcomes
// are returned; outputs/ presence alone cannot distinguish "succeeded" from
// "skipped after an earlier failure".
type Runs struct {
	store      store.Store
	layout     paths.Layout
	supervisor *Supervisor
}

// NewRuns constructs a Runs status reader.
func NewRuns(s store.Store, layout paths.Layout, supervisor *Supervisor) *Runs {
	return &Runs{store: s, layout: layout, supervisor: supervisor}
}

// GetStatus returns projectID's run_<runNumber> status: the supervisor's live
// status and per-node outcomes while the run is active, otherwise the
// persisted metadata status with no per-node outcomes.
func (r *Runs) GetStatus(ctx context.Context, projectID string, runNumber int) (StatusSnapshot, error) {
	var metadata project.RunMetadata
	if err := r.store.ReadYAML(ctx, r.layout.RunMetadataPath(projectID, runNumber), &metadata); err != nil {
		return StatusSnapshot{}, err
	}

	if status, outcomes, ok := r.supervisor.LiveStatus(projectID, runNumber); ok {
		return StatusSnapshot{RunNumber: runNumber, RunHandle: metadata.Handle, Status: status, Nodes: outcomes}, nil
	}

	return StatusSnapshot{RunNumber: runNumber, RunHandle: metadata.Handle, Status: metadata.Status}, nil
}
