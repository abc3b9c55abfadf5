// Package paths resolves the on-disk layout of projects, simulations, and
// runs. It performs no I/O and never fails: it is a pure mapping from
// identifiers to paths.
package paths

import (
	"path/filepath"
	"strconv"
)

// Layout resolves paths rooted at BaseDir. A value (not a package-level
// singleton) so tests and the CLI can each hold their own root without
// sharing global state.
type Layout struct {
	BaseDir string
}

// New returns a Layout rooted at baseDir.
func New(baseDir string) Layout {
	return Layout{BaseDir: baseDir}
}

// ProjectsPath is <base>/projects.
func (l Layout) ProjectsPath() string {
	return filepath.Join(l.BaseDir, "projects")
}

// ProjectPath is projects_path()/<projectID>.
func (l Layout) ProjectPath(projectID string) string {
	return filepath.Join(l.ProjectsPath(), projectID)
}

// SimulationsPath is <base>/simulations, the root of the template library.
func (l Layout) SimulationsPath() string {
	return filepath.Join(l.BaseDir, "simulations")
}

// SimulationPath is <base>/simulations/<simulationID>. The global flag is
// reserved for future scoping (e.g. user-private vs shared templates) and
// currently has no effect.
func (l Layout) SimulationPath(simulationID string, global bool) string {
	return filepath.Join(l.SimulationsPath(), simulationID)
}

// GraphPath is the project's graph.json.
func (l Layout) GraphPath(projectID string) string {
	return filepath.Join(l.ProjectPath(projectID), "graph.json")
}

// RunsPath is project_path(p)/runs.
func (l Layout) RunsPath(projectID string) string {
	return filepath.Join(l.ProjectPath(projectID), "runs")
}

// RunPath is runs_path(p)/run_<n>.
func (l Layout) RunPath(projectID string, runNumber int) string {
	return filepath.Join(l.RunsPath(projectID), runDirName(runNumber))
}

// RunMetadataPath is run_path(p,n)/metadata.yaml.
func (l Layout) RunMetadataPath(projectID string, runNumber int) string {
	return filepath.Join(l.RunPath(projectID, runNumber), "metadata.yaml")
}

// NodePath is project_path(p)/<nodeID> when run is nil, else
// run_path(p,*run)/<nodeID>.
func (l Layout) NodePath(projectID, nodeID string, run *int) string {
	if run == nil {
		return filepath.Join(l.ProjectPath(projectID), nodeID)
	}
	return filepath.Join(l.RunPath(projectID, *run), nodeID)
}

// NodeSourcePath is node_path(.../source), the copied template workspace.
func (l Layout) NodeSourcePath(projectID, nodeID string, run *int) string {
	return filepath.Join(l.NodePath(projectID, nodeID, run), "source")
}

// NodeInputsPath is node_path(.../inputs).
func (l Layout) NodeInputsPath(projectID, nodeID string, run *int) string {
	return filepath.Join(l.NodePath(projectID, nodeID, run), "inputs")
}

// NodeOutputsPath is node_path(.../outputs).
func (l Layout) NodeOutputsPath(projectID, nodeID string, run *int) string {
	return filepath.Join(l.NodePath(projectID, nodeID, run), "outputs")
}

// NodeParametersPath is the parameters.json file inside the node's path.
func (l Layout) NodeParametersPath(projectID, nodeID string, run *int) string {
	return filepath.Join(l.NodePath(projectID, nodeID, run), "parameters.json")
}

// PropertiesPath is the properties.yaml file inside the node's path.
func (l Layout) PropertiesPath(projectID, nodeID string, run *int) string {
	return filepath.Join(l.NodePath(projectID, nodeID, run), "properties.yaml")
}

func runDirName(n int) string {
	return "run_" + strconv.Itoa(n)
}
