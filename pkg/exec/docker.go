// Package exec implements the execution strategy that turns a graph node
// into a container invocation: image pull, bind mounts, the
// FLUIDIZE_* environment contract, and line-by-line log streaming.
package exec

import (
	"context"
	"fmt"
	"io"
	"strings"

	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
)

// DockerRunner wraps the Docker SDK client with the narrow set of
// operations a node execution needs: pull, run-to-completion with output
// streaming, and cleanup. Grounded on the teacher's DockerClient, trimmed
// to drop everything the task-execution use case does not need (ports,
// networks, volumes-by-name, healthchecks, one-shot helpers).
type DockerRunner struct {
	client *client.Client
}

// NewDockerRunner constructs a runner against the local Docker daemon using
// the standard environment-variable configuration (DOCKER_HOST, etc).
func NewDockerRunner() (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerRunner{client: cli}, nil
}

// ContainerSpec describes a single node's container invocation.
type ContainerSpec struct {
	Image       string
	Entrypoint  []string
	Command     []string
	Environment map[string]string
	Binds       []string // "<host path>:<container path>" pairs
	WorkDir     string
}

// RunResult carries the outcome of a completed container run.
type RunResult struct {
	ExitCode int
}

// pullIfAbsent pulls spec.Image only when it is not already present
// locally, mirroring RunContainer's ImageInspect-then-pull check.
func (d *DockerRunner) pullIfAbsent(ctx context.Context, img string) error {
	_, _, err := d.client.ImageInspectWithRaw(ctx, img)
	if err == nil {
		return nil
	}

	reader, err := d.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fluidizeerrors.ImagePullFailed(img, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fluidizeerrors.ImagePullFailed(img, err)
	}
	return nil
}

// Run pulls spec.Image if needed, creates and starts a container, streams
// every output line to onLine, waits for exit, and always removes the
// container afterward.
func (d *DockerRunner) Run(ctx context.Context, spec ContainerSpec, onLine func(line string)) (RunResult, error) {
	if err := d.pullIfAbsent(ctx, spec.Image); err != nil {
		return RunResult{}, err
	}

	env := make([]string, 0, len(spec.Environment))
	for k, v := range spec.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	config := &dockercontainer.Config{
		Image:        spec.Image,
		Env:          env,
		Entrypoint:   spec.Entrypoint,
		Cmd:          spec.Command,
		WorkingDir:   spec.WorkDir,
		AttachStdout: true,
		AttachStderr: true,
	}
	hostConfig := &dockercontainer.HostConfig{
		Binds: spec.Binds,
	}

	resp, err := d.client.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to create container: %w", err)
	}
	containerID := resp.ID
	defer func() {
		_ = d.client.ContainerRemove(ctx, containerID, dockercontainer.RemoveOptions{Force: true})
	}()

	attach, err := d.client.ContainerAttach(ctx, containerID, dockercontainer.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to attach to container: %w", err)
	}

	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		streamMultiplexed(attach.Reader, onLine)
	}()

	if err := d.client.ContainerStart(ctx, containerID, dockercontainer.StartOptions{}); err != nil {
		attach.Close()
		return RunResult{}, fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := d.client.ContainerWait(ctx, containerID, dockercontainer.WaitConditionNotRunning)
	var exitCode int
	select {
	case err := <-errCh:
		attach.Close()
		<-streamDone
		if err != nil {
			return RunResult{}, fmt.Errorf("error waiting for container: %w", err)
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
		attach.Close()
		<-streamDone
	case <-ctx.Done():
		attach.Close()
		<-streamDone
		return RunResult{}, ctx.Err()
	}

	return RunResult{ExitCode: exitCode}, nil
}

// streamMultiplexed reads Docker's multiplexed attach stream and invokes
// onLine for every complete line, regardless of whether it came from
// stdout or stderr (the node contract treats both as INFO-level output;
// only the final exit code distinguishes success from failure).
//
// Frame format: [stream_type(1)][0][0][0][payload_size(4 big-endian)].
func streamMultiplexed(reader io.Reader, onLine func(line string)) {
	if onLine == nil || reader == nil {
		return
	}

	header := make([]byte, 8)
	var carry strings.Builder

	for {
		if _, err := io.ReadFull(reader, header); err != nil {
			break
		}
		size := uint32(header[4])<<24 | uint32(header[5])<<16 | uint32(header[6])<<8 | uint32(header[7])
		if size == 0 {
			continue
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(reader, payload); err != nil {
			break
		}

		carry.Write(payload)
		emitCompleteLines(&carry, onLine)
	}

	if carry.Len() > 0 {
		onLine(carry.String())
	}
}

// emitCompleteLines drains every newline-terminated line currently buffered
// in carry, invoking onLine for each and leaving any trailing partial line
// in place for the next frame.
func emitCompleteLines(carry *strings.Builder, onLine func(line string)) {
	buffered := carry.String()
	idx := strings.IndexByte(buffered, '\n')
	if idx < 0 {
		return
	}

	carry.Reset()
	for idx >= 0 {
		line := strings.TrimRight(buffered[:idx], "\r")
		onLine(line)
		buffered = buffered[idx+1:]
		idx = strings.IndexByte(buffered, '\n')
	}
	carry.WriteString(buffered)
}
