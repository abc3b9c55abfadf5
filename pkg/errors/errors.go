// Package errors provides structured error types for the engine.
package errors

import "fmt"

// Code identifies a specific error condition surfaced to callers.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidEdge      Code = "INVALID_EDGE"
	CodeInvalidGraph     Code = "INVALID_GRAPH"
	CodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	CodeGraphHasCycle    Code = "GRAPH_HAS_CYCLE"
	CodeNoNodesToRun     Code = "NO_NODES_TO_RUN"
	CodeImagePullFailed  Code = "CONTAINER_IMAGE_PULL_FAILED"
	CodeExecutionFailed  Code = "NODE_EXECUTION_FAILED"
	CodeIOFault          Code = "IO_FAULT"
)

// Error is the base error type for the engine.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Wrap creates a new error wrapping an existing error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]interface{})}
}

// WithDetail adds a single detail to an error and returns it for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// NotFound creates a "not found" error for the given resource type/id.
func NotFound(resourceType, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %q not found", resourceType, id)).
		WithDetail("resource_type", resourceType).
		WithDetail("id", id)
}

// InvalidEdge creates an error for an edge referencing an absent node.
func InvalidEdge(edgeID, endpoint, nodeID string) *Error {
	return New(CodeInvalidEdge, fmt.Sprintf("edge %q references missing node %q", edgeID, nodeID)).
		WithDetail("edge_id", edgeID).
		WithDetail("endpoint", endpoint).
		WithDetail("node_id", nodeID)
}

// TemplateNotFound creates an error for a simulation_id with no valid template.
func TemplateNotFound(simulationID string) *Error {
	return New(CodeTemplateNotFound, fmt.Sprintf("simulation template %q not found", simulationID)).
		WithDetail("simulation_id", simulationID)
}

// GraphHasCycle creates an error identifying the node ids involved in a cycle.
func GraphHasCycle(nodeIDs []string) *Error {
	return New(CodeGraphHasCycle, fmt.Sprintf("dependency cycle detected involving %d nodes: %v", len(nodeIDs), nodeIDs)).
		WithDetail("node_ids", nodeIDs)
}

// NoNodesToRun creates an error for a graph with an empty execution order.
func NoNodesToRun(projectID string) *Error {
	return New(CodeNoNodesToRun, "no nodes to run; check the project graph").
		WithDetail("project_id", projectID)
}

// ImagePullFailed wraps a container image pull failure.
func ImagePullFailed(image string, cause error) *Error {
	return Wrap(CodeImagePullFailed, fmt.Sprintf("failed to pull image %q", image), cause).
		WithDetail("image", image)
}

// ExecutionFailed creates an error describing a nonzero node exit code.
func ExecutionFailed(nodeID string, exitCode int) *Error {
	return New(CodeExecutionFailed, fmt.Sprintf("node %q exited with code %d", nodeID, exitCode)).
		WithDetail("node_id", nodeID).
		WithDetail("exit_code", exitCode)
}

// IOFault wraps an underlying filesystem failure.
func IOFault(operation, path string, cause error) *Error {
	return Wrap(CodeIOFault, fmt.Sprintf("%s failed for %q", operation, path), cause).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return false
	}
	return e.Code == code
}
