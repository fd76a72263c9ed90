package docs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownDirective is returned when a document uses an unregistered directive.
var ErrUnknownDirective = errors.New("unknown directive type")

// Invocation describes one use of a directive in a document.
type Invocation struct {
	Name    string
	Args    string
	Options map[string]string
	Content []string
	Line    int
}

// Directive turns an invocation into document content, usually by calling
// State.InsertLines or State.Append.
type Directive interface {
	Run(ctx context.Context, st *State, inv *Invocation) error
}

// DirectiveFunc adapts a function to the Directive interface.
type DirectiveFunc func(ctx context.Context, st *State, inv *Invocation) error

func (f DirectiveFunc) Run(ctx context.Context, st *State, inv *Invocation) error {
	return f(ctx, st, inv)
}

// Registry maps directive names to implementations.
type Registry struct {
	mu         sync.RWMutex
	directives map[string]Directive
}

func NewRegistry() *Registry {
	return &Registry{directives: make(map[string]Directive)}
}

// Register adds d under name, replacing any earlier registration.
func (r *Registry) Register(name string, d Directive) error {
	if name == "" {
		return fmt.Errorf("directive name is required")
	}
	if d == nil {
		return fmt.Errorf("directive %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directives[name] = d
	return nil
}

func (r *Registry) Get(name string) (Directive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.directives[name]
	return d, ok
}

// Names returns registered directive names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.directives))
	for name := range r.directives {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
