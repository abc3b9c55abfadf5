package exec

import (
	"context"
	"path/filepath"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	fluidizegraph "github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// NodeContext parameterizes a single node execution: (node, predecessor,
// project, run_number) per spec.md §4.7. PredecessorNodeID is empty when
// the node has no upstream dependency.
type NodeContext struct {
	ProjectID         string
	RunNumber         int
	Node              *fluidizegraph.Node
	PredecessorNodeID string
}

// PreparedEnvironment is the output of Prepare: the resolved paths and
// environment variables ExecuteNode needs, plus the container image to
// run.
type PreparedEnvironment struct {
	ContainerImage string
	Environment    map[string]string
	NodePath       string
	SimulationPath string
	OutputPath     string
	InputPath      string // empty when there is no predecessor
}

// ExecutionStrategy is implemented once per execution target. The core
// ships a single variant, LocalContainerStrategy, but callers depend only
// on this interface so a future remote/cloud strategy can be substituted
// without touching the orchestrator.
type ExecutionStrategy interface {
	// Prepare resolves a node's run-scoped paths and environment.
	Prepare(ctx context.Context, nc NodeContext) (PreparedEnvironment, error)
	// HandleFiles creates the node's output directory and checks that its
	// input directory, if any, exists before execution.
	HandleFiles(ctx context.Context, env PreparedEnvironment) error
	// ExecuteNode runs the node to completion, streaming output through
	// streamer, and returns the C8 contract's (message, success) pair.
	ExecuteNode(ctx context.Context, env PreparedEnvironment, streamer *LineStreamer) (string, bool)
}

// nodeProperties is the subset of properties.yaml the execution strategy
// reads.
type nodeProperties struct {
	Properties struct {
		ContainerImage string `yaml:"container_image"`
	} `yaml:"properties"`
}

// LocalContainerStrategy launches a Docker-compatible container per node.
type LocalContainerStrategy struct {
	runner *DockerRunner
	store  store.Store
	layout paths.Layout
}

// NewLocalContainerStrategy constructs a strategy backed by runner.
func NewLocalContainerStrategy(runner *DockerRunner, s store.Store, layout paths.Layout) *LocalContainerStrategy {
	return &LocalContainerStrategy{runner: runner, store: s, layout: layout}
}

// Prepare reads properties.yaml for container_image and resolves the
// node's run-scoped paths, wiring FLUIDIZE_INPUT_PATH to the predecessor's
// output directory only when one is present.
func (s *LocalContainerStrategy) Prepare(ctx context.Context, nc NodeContext) (PreparedEnvironment, error) {
	run := nc.RunNumber
	nodePath := s.layout.NodePath(nc.ProjectID, nc.Node.ID, &run)
	simulationPath := s.layout.NodeSourcePath(nc.ProjectID, nc.Node.ID, &run)
	outputPath := s.layout.NodeOutputsPath(nc.ProjectID, nc.Node.ID, &run)

	var props nodeProperties
	propertiesPath := filepath.Join(nodePath, "properties.yaml")
	if err := s.store.ReadYAML(ctx, propertiesPath, &props); err != nil {
		return PreparedEnvironment{}, err
	}
	if props.Properties.ContainerImage == "" {
		return PreparedEnvironment{}, fluidizeerrors.New(fluidizeerrors.CodeInvalidGraph, "node properties.yaml is missing container_image").
			WithDetail("node_id", nc.Node.ID)
	}

	env := map[string]string{
		"FLUIDIZE_NODE_ID":        nc.Node.ID,
		"FLUIDIZE_NODE_PATH":      nodePath,
		"FLUIDIZE_SIMULATION_PATH": simulationPath,
		"FLUIDIZE_OUTPUT_PATH":    outputPath,
		"FLUIDIZE_EXECUTION_MODE": "local_docker",
	}

	var inputPath string
	if nc.PredecessorNodeID != "" {
		inputPath = s.layout.NodeOutputsPath(nc.ProjectID, nc.PredecessorNodeID, &run)
		env["FLUIDIZE_INPUT_PATH"] = inputPath
	}

	return PreparedEnvironment{
		ContainerImage: props.Properties.ContainerImage,
		Environment:    env,
		NodePath:       nodePath,
		SimulationPath: simulationPath,
		OutputPath:     outputPath,
		InputPath:      inputPath,
	}, nil
}

// HandleFiles creates the node's output directory before the container
// starts and, when an input directory is wired, fails with an IOFault if it
// does not exist (it is not created here). The run workspace manager
// already creates these during PrepareRun; this is a defensive check for
// strategies invoked outside that path (e.g. a single-node re-run).
func (s *LocalContainerStrategy) HandleFiles(ctx context.Context, env PreparedEnvironment) error {
	if err := s.store.CreateDirectory(ctx, env.OutputPath); err != nil {
		return err
	}
	if env.InputPath != "" {
		exists, err := s.store.Exists(ctx, env.InputPath)
		if err != nil {
			return err
		}
		if !exists {
			return fluidizeerrors.IOFault("stat", env.InputPath, errNoPredecessorOutput)
		}
	}
	return nil
}

var errNoPredecessorOutput = fluidizeerrors.New(fluidizeerrors.CodeIOFault, "predecessor output directory does not exist")

// ExecuteNode pulls the image if needed, runs the container with the node
// workspace, output, and (if present) input directories bind-mounted, and
// streams every output line through streamer. The in-container working
// directory is FLUIDIZE_SIMULATION_PATH and the entrypoint overrides to
// `/bin/bash <simulation_path>/main.sh`.
func (s *LocalContainerStrategy) ExecuteNode(ctx context.Context, env PreparedEnvironment, streamer *LineStreamer) (string, bool) {
	description := "node " + env.Environment["FLUIDIZE_NODE_ID"]
	streamer.Start(description)

	binds := []string{
		env.NodePath + ":" + env.NodePath,
		env.OutputPath + ":" + env.OutputPath,
	}
	if env.InputPath != "" {
		binds = append(binds, env.InputPath+":"+env.InputPath)
	}

	spec := ContainerSpec{
		Image:       env.ContainerImage,
		Entrypoint:  []string{"/bin/bash", filepath.Join(env.SimulationPath, "main.sh")},
		Environment: env.Environment,
		Binds:       binds,
		WorkDir:     env.SimulationPath,
	}

	result, err := s.runner.Run(ctx, spec, streamer.Line)
	if err != nil {
		return streamer.Complete(description, false, err.Error())
	}
	if result.ExitCode != 0 {
		execErr := fluidizeerrors.ExecutionFailed(env.Environment["FLUIDIZE_NODE_ID"], result.ExitCode)
		return streamer.Complete(description, false, execErr.Error())
	}
	return streamer.Complete(description, true, "")
}
