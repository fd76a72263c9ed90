// Package snippet evaluates source snippets embedded in documentation.
//
// Evaluators write to whatever os.Stdout and os.Stderr are at the time Eval
// runs, so callers that swap those streams (see package capture) observe the
// snippet's output.
package snippet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownLanguage is returned when no evaluator is registered for a language.
var ErrUnknownLanguage = errors.New("unknown snippet language")

// ErrEvaluatorExists is returned when registering a duplicate language.
var ErrEvaluatorExists = errors.New("evaluator already registered")

// ErrEval classifies failures raised by the evaluated snippet itself.
var ErrEval = errors.New("snippet evaluation failed")

// Evaluator runs a snippet of one language.
type Evaluator interface {
	Language() string
	Eval(ctx context.Context, src string) error
}

// EvalError reports a snippet that ran but failed.
type EvalError struct {
	Language string
	ExitCode int
	Message  string
	Err      error
}

func (e *EvalError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s snippet exited with status %d", e.Language, e.ExitCode)
	}
	return fmt.Sprintf("%s snippet: %s", e.Language, e.Message)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Is makes every EvalError match ErrEval.
func (e *EvalError) Is(target error) bool { return target == ErrEval }

// Registry maps language names to evaluators.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[string]Evaluator)}
}

// Register adds an evaluator under its Language name.
func (r *Registry) Register(e Evaluator) error {
	if e == nil {
		return fmt.Errorf("evaluator is nil")
	}
	lang := e.Language()
	if lang == "" {
		return fmt.Errorf("evaluator language is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.evaluators[lang]; exists {
		return fmt.Errorf("%w: %s", ErrEvaluatorExists, lang)
	}
	r.evaluators[lang] = e
	return nil
}

// Get returns the evaluator for lang.
func (r *Registry) Get(lang string) (Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.evaluators[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return e, nil
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.evaluators))
	for lang := range r.evaluators {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Default returns a registry with the shell evaluator (as "sh") and the TCL
// evaluator (as "tcl").
func Default(shell, dir string) *Registry {
	r := NewRegistry()
	for _, e := range []Evaluator{&ShellEvaluator{Shell: shell, Dir: dir}, &TclEvaluator{}} {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}
