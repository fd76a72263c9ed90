package docker

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// RunOpts describes one container run. Dir is bind-mounted at the same path
// inside the container and used as its working directory, so paths written
// into test command lines stay valid on both sides.
type RunOpts struct {
	Image       string
	Command     []string
	Dir         string
	Env         map[string]string
	Timeout     time.Duration
	ExtraMounts []Mount
	CPULimit    float64
	MemoryLimit int64
	UserID      string
}

type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

type RunResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Label marks containers started by benchlit.
const Label = "benchlit"

// RunContainer runs opts.Command to completion in a new container and
// removes it afterwards. A run that outlives opts.Timeout is killed and
// reported with exit code 124.
func RunContainer(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	if opts.Image == "" {
		return nil, fmt.Errorf("no image given")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	containerCfg, hostCfg := buildConfig(opts)
	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container from %s: %w", opts.Image, err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	waitResult := cli.ContainerWait(waitCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				logTail(cli, containerID, "timeout")
				return &RunResult{
					ExitCode: 124,
					TimedOut: true,
					Duration: time.Since(start),
				}, nil
			}
		case status := <-waitResult.Result:
			if status.StatusCode != 0 {
				logTail(cli, containerID, fmt.Sprintf("exit %d", status.StatusCode))
			}
			return &RunResult{
				ExitCode: int(status.StatusCode),
				Duration: time.Since(start),
			}, nil
		}
	}
}

// logTail logs the end of the container's log stream for debugging.
func logTail(cli *client.Client, containerID, reason string) {
	logReader, _ := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true, Tail: "100"})
	if logReader == nil {
		return
	}
	defer logReader.Close()
	logData, _ := io.ReadAll(logReader)
	if len(logData) > 0 {
		log.Printf("container %.12s logs (%s):\n%s", containerID, reason, logData)
	}
}

// buildConfig translates opts into the container and host configuration.
func buildConfig(opts *RunOpts) (*container.Config, *container.HostConfig) {
	env := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	var mounts []mount.Mount
	if opts.Dir != "" {
		mounts = append(mounts, mount.Mount{Type: mount.TypeBind, Source: opts.Dir, Target: opts.Dir})
	}
	for _, m := range opts.ExtraMounts {
		if m.Source == opts.Dir && m.Target == opts.Dir {
			continue
		}
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: mounts,
		Init:   &initTrue,
		// perf needs perf_event_open, which the default profile blocks.
		SecurityOpt: []string{"seccomp=unconfined"},
	}
	if opts.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(opts.CPULimit * 1e9)
	}
	if opts.MemoryLimit > 0 {
		hostCfg.Memory = opts.MemoryLimit
	}

	return &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Command,
		Env:        env,
		WorkingDir: opts.Dir,
		User:       opts.UserID,
		Labels:     map[string]string{Label: "true"},
	}, hostCfg
}
