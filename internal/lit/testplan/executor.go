package testplan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/signalnine/benchlit/internal/docker"
	"github.com/signalnine/benchlit/internal/lit/shellcommand"
)

// ExecResult is the outcome of running one script.
type ExecResult struct {
	Output   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Executor runs the lines of one plan phase ("prepare", "run", "verify") as
// a single shell script that stops at the first failing line.
type Executor interface {
	Exec(ctx context.Context, phase string, lines []string) (*ExecResult, error)
}

func scriptText(lines []string) string {
	return "set -e\n" + strings.Join(lines, "\n") + "\n"
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// LocalExecutor runs scripts with `<Shell> -c` on the host.
type LocalExecutor struct {
	Shell   string // defaults to /bin/sh
	Dir     string
	Env     map[string]string // added to the process environment
	Timeout time.Duration     // per script; zero means none
}

func (e *LocalExecutor) Exec(ctx context.Context, phase string, lines []string) (*ExecResult, error) {
	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", scriptText(lines))
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), envList(e.Env)...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Background children of a killed script may keep the output pipe open.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	res := &ExecResult{Output: out.String(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = 124
		res.TimedOut = true
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("running %s script: %w", phase, err)
}

// DockerExecutor runs scripts inside a container of Image with Dir
// bind-mounted at the same path. Script output is written to
// <LogBase>.<phase>.log in Dir, since the container's streams are not
// returned to the caller.
type DockerExecutor struct {
	Image       string
	Dir         string
	LogBase     string
	Env         map[string]string
	Mounts      []docker.Mount
	Timeout     time.Duration
	CPULimit    float64
	MemoryLimit int64
}

func (e *DockerExecutor) Exec(ctx context.Context, phase string, lines []string) (*ExecResult, error) {
	logBase := e.LogBase
	if logBase == "" {
		logBase = filepath.Join(e.Dir, "script")
	}
	logFile := logBase + "." + phase + ".log"
	script := fmt.Sprintf("exec >%s 2>&1\n%s", shellcommand.Quote(logFile), scriptText(lines))

	res, err := docker.RunContainer(ctx, &docker.RunOpts{
		Image:       e.Image,
		Command:     []string{"sh", "-c", script},
		Dir:         e.Dir,
		Env:         e.Env,
		ExtraMounts: e.Mounts,
		Timeout:     e.Timeout,
		CPULimit:    e.CPULimit,
		MemoryLimit: e.MemoryLimit,
		UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
	})
	if err != nil {
		return nil, fmt.Errorf("running %s script: %w", phase, err)
	}
	output, err := os.ReadFile(logFile)
	if err != nil {
		log.Printf("warning: %s script output unavailable: %v", phase, err)
	}
	return &ExecResult{
		Output:   string(output),
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Duration: res.Duration,
	}, nil
}
