// Package modules holds the registry of test modules. A test module adjusts
// a test plan before it runs, typically rewriting the run script and adding
// metric collectors.
package modules

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/signalnine/benchlit/internal/lit"
)

// PathPrefix is stripped from component paths to form module names.
const PathPrefix = "github.com/signalnine/benchlit/internal/lit/modules/"

// ErrUnknownModule is returned when a test names an unregistered module.
var ErrUnknownModule = errors.New("unknown test module")

// Module mutates a test plan. MutatePlan is called once per test, before the
// plan executes, with the test's own context.
type Module interface {
	MutatePlan(c *lit.Context, plan *lit.Plan) error
}

// Component is a candidate module found at Path.
type Component struct {
	Path string
	Impl any
}

type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

func (r *Registry) Register(name string, m Module) error {
	if name == "" {
		return fmt.Errorf("module name is required")
	}
	if m == nil {
		return fmt.Errorf("module %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	r.modules[name] = m
	return nil
}

func (r *Registry) Get(name string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return m, nil
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for name := range r.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load builds a registry from components. Each is named by its path with
// PathPrefix removed; components that do not implement Module are skipped
// with a warning.
func Load(components []Component) (*Registry, error) {
	r := NewRegistry()
	for _, c := range components {
		name := strings.TrimPrefix(c.Path, PathPrefix)
		m, ok := c.Impl.(Module)
		if !ok {
			log.Printf("warning: %s is not a test module (no MutatePlan), skipping", c.Path)
			continue
		}
		if err := r.Register(name, m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Apply runs the named modules on plan, in order.
func (r *Registry) Apply(names []string, c *lit.Context, plan *lit.Plan) error {
	for _, name := range names {
		m, err := r.Get(name)
		if err != nil {
			return err
		}
		if err := m.MutatePlan(c, plan); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	return nil
}
