package snippet_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/benchlit/internal/capture"
	"github.com/signalnine/benchlit/internal/snippet"
)

func evalCaptured(t *testing.T, e snippet.Evaluator, src string) (capture.Output, error) {
	t.Helper()
	return capture.Run(func() error {
		return e.Eval(context.Background(), src)
	})
}

func TestShellEvaluator(t *testing.T) {
	e := &snippet.ShellEvaluator{}
	out, err := evalCaptured(t, e, "echo hello\necho oops >&2")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out.Stdout != "hello\n" {
		t.Errorf("stdout: got %q, want %q", out.Stdout, "hello\n")
	}
	if out.Stderr != "oops\n" {
		t.Errorf("stderr: got %q, want %q", out.Stderr, "oops\n")
	}
}

func TestShellEvaluatorExitStatus(t *testing.T) {
	e := &snippet.ShellEvaluator{}
	_, err := evalCaptured(t, e, "echo partial; exit 3")
	if !errors.Is(err, snippet.ErrEval) {
		t.Fatalf("expected ErrEval, got %v", err)
	}
	var evalErr *snippet.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if evalErr.ExitCode != 3 {
		t.Errorf("exit code: got %d, want 3", evalErr.ExitCode)
	}
}

func TestShellEvaluatorBackgroundProcess(t *testing.T) {
	e := &snippet.ShellEvaluator{}
	start := time.Now()
	out, err := evalCaptured(t, e, "sleep 5 &\necho hi")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Eval waited %v for a background process", elapsed)
	}
	if out.Stdout != "hi\n" {
		t.Errorf("stdout: got %q, want %q", out.Stdout, "hi\n")
	}
}

func TestShellEvaluatorDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	e := &snippet.ShellEvaluator{Dir: dir, Env: []string{"SNIPPET_GREETING=hi"}}
	out, err := evalCaptured(t, e, `echo "$SNIPPET_GREETING"; ls marker`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out.Stdout != "hi\nmarker\n" {
		t.Errorf("stdout: got %q, want %q", out.Stdout, "hi\nmarker\n")
	}
}

func TestTclEvaluator(t *testing.T) {
	e := &snippet.TclEvaluator{}
	out, err := evalCaptured(t, e, `set x 21
puts "Result"
puts -nonewline [expr {$x * 2}]
puts stderr warn`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out.Stdout != "Result\n42" {
		t.Errorf("stdout: got %q, want %q", out.Stdout, "Result\n42")
	}
	if out.Stderr != "warn\n" {
		t.Errorf("stderr: got %q, want %q", out.Stderr, "warn\n")
	}
}

func TestTclEvaluatorError(t *testing.T) {
	e := &snippet.TclEvaluator{}
	_, err := evalCaptured(t, e, `error "bad things"`)
	if !errors.Is(err, snippet.ErrEval) {
		t.Fatalf("expected ErrEval, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := snippet.Default("", "")
	got := r.Languages()
	if len(got) != 2 || got[0] != "sh" || got[1] != "tcl" {
		t.Errorf("languages: got %v, want [sh tcl]", got)
	}
	if _, err := r.Get("python"); !errors.Is(err, snippet.ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
	if err := r.Register(&snippet.ShellEvaluator{}); !errors.Is(err, snippet.ErrEvaluatorExists) {
		t.Errorf("expected ErrEvaluatorExists, got %v", err)
	}
	if err := r.Register(nil); err == nil {
		t.Error("expected error for nil evaluator")
	}
}
