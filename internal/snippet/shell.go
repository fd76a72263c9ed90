package snippet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Eval waits for the snippet's output pipes after
// the shell exits. Background processes started by a snippet keep them open.
const waitDelay = time.Second

// ShellEvaluator runs snippets with `<Shell> -c`.
type ShellEvaluator struct {
	Shell string // defaults to /bin/sh
	Dir   string
	Env   []string // appended to os.Environ()
}

func (e *ShellEvaluator) Language() string { return "sh" }

func (e *ShellEvaluator) Eval(ctx context.Context, src string) error {
	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", src)
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), e.Env...)
	// Plain writers, not *os.File, so the child gets its own pipes and
	// WaitDelay can cut them off.
	cmd.Stdout = struct{ io.Writer }{os.Stdout}
	cmd.Stderr = struct{ io.Writer }{os.Stderr}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		log.Printf("warning: snippet left background processes holding its output; output after exit is dropped")
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &EvalError{Language: e.Language(), ExitCode: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("running %s: %w", shell, err)
}
