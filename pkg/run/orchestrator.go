package run

import (
	"context"
	"sort"
	"strconv"
	"time"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	fluidizeexec "github.com/fluidize-dev/fluidize-engine/pkg/exec"
	fluidizegraph "github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/logsink"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// Orchestrator implements RunFlow (C9): plan the execution order, prepare
// the run workspace, and walk the order sequentially, one container per
// node, wiring each node's predecessor output into its input path. The run
// proceeds on a background goroutine; RunFlow itself returns as soon as the
// run is accepted, per spec.md §9's fire-and-forget launch pattern.
type Orchestrator struct {
	store      store.Store
	layout     paths.Layout
	workspace  *Workspace
	strategy   fluidizeexec.ExecutionStrategy
	sink       logsink.Sink
	supervisor *Supervisor
	policy     MultiInputPolicy
}

// NewOrchestrator constructs an Orchestrator. policy governs how a
// multi-predecessor node picks the one that feeds FLUIDIZE_INPUT_PATH.
func NewOrchestrator(s store.Store, layout paths.Layout, strategy fluidizeexec.ExecutionStrategy, sink logsink.Sink, supervisor *Supervisor, policy MultiInputPolicy) *Orchestrator {
	return &Orchestrator{
		store:      s,
		layout:     layout,
		workspace:  NewWorkspace(s, layout),
		strategy:   strategy,
		sink:       sink,
		supervisor: supervisor,
		policy:     policy,
	}
}

// RunFlow loads processor's graph, computes its execution order, rejects an
// empty order with errors.NoNodesToRun and a cyclic graph with
// errors.GraphHasCycle, materializes the run workspace, and launches
// execution in the background. The returned Result carries the allocated
// run number.
func (o *Orchestrator) RunFlow(ctx context.Context, processor *project.GraphProcessor, payload StartPayload) (Result, error) {
	projectID := processor.ProjectID()
	g := processor.GetGraph(ctx)

	order, predecessors, err := fluidizegraph.Order(g)
	if err != nil {
		return Result{}, err
	}
	if len(order) == 0 {
		return Result{}, fluidizeerrors.NoNodesToRun(projectID)
	}

	runNumber, handle, err := o.workspace.PrepareRun(ctx, projectID, g, payload)
	if err != nil {
		return Result{}, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o.supervisor.register(projectID, runNumber, cancel)

	go o.execute(runCtx, projectID, runNumber, order, predecessors)

	return Result{RunNumber: runNumber, RunHandle: handle, FlowStatus: "running"}, nil
}

// Cancel requests cancellation of an in-flight run. Returns false if the
// run is not currently tracked as active.
func (o *Orchestrator) Cancel(projectID string, runNumber int) bool {
	return o.supervisor.Cancel(projectID, runNumber)
}

// execute walks order sequentially, short-circuiting on the first failed or
// canceled node, and persists the run's final status to metadata.yaml.
func (o *Orchestrator) execute(ctx context.Context, projectID string, runNumber int, order []string, predecessors map[string][]string) {
	defer o.supervisor.unregister(projectID, runNumber)

	finalStatus := "completed"

	for _, nodeID := range order {
		select {
		case <-ctx.Done():
			finalStatus = "canceled"
		default:
		}
		if finalStatus == "canceled" {
			break
		}

		predecessorID, err := o.resolvePredecessor(predecessors[nodeID])
		if err != nil {
			o.recordFailure(projectID, runNumber, nodeID, err.Error())
			finalStatus = "failed"
			break
		}

		nc := fluidizeexec.NodeContext{
			ProjectID:         projectID,
			RunNumber:         runNumber,
			Node:              &fluidizegraph.Node{ID: nodeID},
			PredecessorNodeID: predecessorID,
		}

		started := time.Now()
		ok := o.runNode(ctx, nc)
		ended := time.Now()

		status := "success"
		if !ok {
			status = "failed"
		}
		o.supervisor.recordOutcome(projectID, runNumber, NodeOutcome{
			NodeID:    nodeID,
			Status:    status,
			StartedAt: started,
			EndedAt:   ended,
		})
		if !ok {
			finalStatus = "failed"
			break
		}
	}

	o.supervisor.setStatus(projectID, runNumber, finalStatus)
	o.persistFinalStatus(projectID, runNumber, finalStatus)
}

func (o *Orchestrator) runNode(ctx context.Context, nc fluidizeexec.NodeContext) bool {
	env, err := o.strategy.Prepare(ctx, nc)
	if err != nil {
		return false
	}
	if err := o.strategy.HandleFiles(ctx, env); err != nil {
		return false
	}
	streamer := fluidizeexec.NewLineStreamer(o.sink, runKeyAsRunID(nc.RunNumber), nc.Node.ID)
	_, ok := o.strategy.ExecuteNode(ctx, env, streamer)
	return ok
}

func (o *Orchestrator) recordFailure(projectID string, runNumber int, nodeID, message string) {
	now := time.Now()
	o.supervisor.recordOutcome(projectID, runNumber, NodeOutcome{
		NodeID:    nodeID,
		Status:    "failed",
		Message:   message,
		StartedAt: now,
		EndedAt:   now,
	})
}

func (o *Orchestrator) persistFinalStatus(projectID string, runNumber int, status string) {
	var metadata project.RunMetadata
	path := o.layout.RunMetadataPath(projectID, runNumber)
	if err := o.store.ReadYAML(context.Background(), path, &metadata); err != nil {
		return
	}
	metadata.Status = status
	_ = o.store.WriteYAML(context.Background(), path, metadata)
}

// resolvePredecessor applies o.policy to a node's predecessor id list. An
// empty list returns an empty predecessor id (no FLUIDIZE_INPUT_PATH).
func (o *Orchestrator) resolvePredecessor(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	switch o.policy {
	case ErrorOnMultiple:
		return "", fluidizeerrors.New(fluidizeerrors.CodeInvalidGraph, "node has multiple predecessors and the multi-input policy is ErrorOnMultiple").
			WithDetail("predecessor_ids", ids)
	default:
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		return sorted[0], nil
	}
}

// runKeyAsRunID renders a run number as the run_id tag used on logsink
// entries, keeping the (run_id, node_id) stream key stable across C8/C9.
func runKeyAsRunID(runNumber int) string {
	return "run_" + strconv.Itoa(runNumber)
}
