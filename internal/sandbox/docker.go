package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	memoryLimitBytes = 256 * 1024 * 1024 // 256MB
	pidsLimit        = 64
)

// DockerRunner runs each snippet in a throwaway container with networking
// disabled and a memory cap. The container is removed after every run.
type DockerRunner struct {
	cli     *client.Client
	image   string
	timeout time.Duration
}

func NewDockerRunner(image string, timeout time.Duration) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerRunner{cli: cli, image: image, timeout: timeout}, nil
}

func (r *DockerRunner) Close() error {
	return r.cli.Close()
}

func (r *DockerRunner) Run(parent context.Context, code string) (string, error) {
	ctx, cancel := withTimeout(parent, r.timeout)
	defer cancel()

	return captureOutput(func(stdout *bytes.Buffer) error {
		config, hostConfig := containerConfig(r.image, code)

		resp, err := r.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
		if err != nil {
			if errdefs.IsNotFound(err) {
				return fmt.Errorf("sandbox image %s not found: %w", r.image, err)
			}
			return fmt.Errorf("create sandbox container: %w", err)
		}
		defer r.remove(resp.ID)

		if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
			return fmt.Errorf("start sandbox container %s: %w", resp.ID, err)
		}

		var exitCode int64
		statusCh, errCh := r.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
		select {
		case err := <-errCh:
			if stopped := interrupted(parent, ctx, r.timeout); stopped != nil {
				return stopped
			}
			return fmt.Errorf("wait for sandbox container %s: %w", resp.ID, err)
		case status := <-statusCh:
			exitCode = status.StatusCode
		}

		logs, err := r.cli.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
		if err != nil {
			return fmt.Errorf("read sandbox logs %s: %w", resp.ID, err)
		}
		defer logs.Close()

		var stderr bytes.Buffer
		if _, err := stdcopy.StdCopy(stdout, &stderr, logs); err != nil {
			return fmt.Errorf("demux sandbox logs %s: %w", resp.ID, err)
		}

		if exitCode != 0 {
			msg := lastLine(stderr.String())
			if msg == "" {
				msg = fmt.Sprintf("exit status %d", exitCode)
			}
			return &ExecutionError{Message: msg}
		}
		return nil
	})
}

// remove uses a fresh context so cleanup still happens after a timeout.
func (r *DockerRunner) remove(id string) {
	if err := r.cli.ContainerRemove(context.Background(), id, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		log.Printf("WARNING: failed to remove sandbox container %s: %v", id, err)
	}
}

func containerConfig(image, code string) (*container.Config, *container.HostConfig) {
	pids := int64(pidsLimit)
	config := &container.Config{
		Image:           image,
		Cmd:             []string{"python3", "-c", code},
		NetworkDisabled: true,
		AttachStdout:    true,
		AttachStderr:    true,
	}
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    memoryLimitBytes,
			PidsLimit: &pids,
		},
	}
	return config, hostConfig
}
