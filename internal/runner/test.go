package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/signalnine/benchlit/internal/config"
	"github.com/signalnine/benchlit/internal/docker"
	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/lit/modules"
	"github.com/signalnine/benchlit/internal/lit/modules/profile"
	"github.com/signalnine/benchlit/internal/lit/modules/rsbench"
	"github.com/signalnine/benchlit/internal/lit/testplan"
	"github.com/signalnine/benchlit/internal/result"
)

type TestOpts struct {
	Test    *config.Test
	Modules *modules.Registry
	RunDir  string
	// Env is the suite environment (env_file); the test's own env wins.
	Env   map[string]string
	Shell string
}

// LoadModules registers the built-in test modules, configured from the
// module_params section of the config.
func LoadModules(params map[string]map[string]any) (*modules.Registry, error) {
	for name := range params {
		if name != "profile" {
			log.Printf("warning: module_params.%s: module takes no parameters", name)
		}
	}
	prof, err := profile.New(params["profile"])
	if err != nil {
		return nil, err
	}
	return modules.Load([]modules.Component{
		{Path: modules.PathPrefix + "rsbench", Impl: rsbench.Module{}},
		{Path: modules.PathPrefix + "profile", Impl: prof},
	})
}

// NewExecutor returns the executor for t: a container of t.Image when set,
// the local shell otherwise. testDir is made visible to containers.
func NewExecutor(t *config.Test, c *lit.Context, testDir string, env map[string]string, shell string) testplan.Executor {
	if t.Image == "" {
		return &testplan.LocalExecutor{
			Shell:   shell,
			Dir:     t.Dir,
			Env:     env,
			Timeout: t.Timeout(),
		}
	}
	return &testplan.DockerExecutor{
		Image:       t.Image,
		Dir:         t.Dir,
		LogBase:     c.TmpBase,
		Env:         env,
		Mounts:      []docker.Mount{{Source: testDir, Target: testDir}},
		Timeout:     t.Timeout(),
		CPULimit:    t.CPULimit,
		MemoryLimit: t.MemoryMB * 1024 * 1024,
	}
}

// RunTest applies the test's modules to its plan, executes it and stores
// result.json in the test directory. Module and metric collection errors
// produce an UNRESOLVED result rather than an error; the returned error is
// reserved for failures to store the result.
func RunTest(ctx context.Context, opts *TestOpts) (*result.TestMeta, error) {
	t := opts.Test
	testDir := result.TestDir(opts.RunDir, t.Name)
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating test dir: %w", err)
	}

	c := lit.NewContext(t.Name, filepath.Join(testDir, t.Name))
	c.OriginalRunScript = append([]string(nil), t.Run...)
	plan := &lit.Plan{
		PrepareScript: append([]string(nil), t.Prepare...),
		RunScript:     append([]string(nil), t.Run...),
		VerifyScript:  append([]string(nil), t.Verify...),
	}
	meta := &result.TestMeta{Test: t.Name, Modules: t.Modules, Image: t.Image}

	env := make(map[string]string, len(opts.Env)+len(t.Env))
	for k, v := range opts.Env {
		env[k] = v
	}
	for k, v := range t.Env {
		env[k] = v
	}

	res, err := runPlan(ctx, opts, c, plan, testDir, env)
	if err != nil {
		log.Printf("warning: %s: %v", t.Name, err)
		res = lit.NewResult(lit.Unresolved)
		res.Output = err.Error()
		meta.Error = err.Error()
	}
	meta.Result = res

	if err := result.WriteTestMeta(testDir, meta); err != nil {
		return nil, fmt.Errorf("writing result: %w", err)
	}
	return meta, nil
}

func runPlan(ctx context.Context, opts *TestOpts, c *lit.Context, plan *lit.Plan, testDir string, env map[string]string) (*lit.Result, error) {
	if err := opts.Modules.Apply(opts.Test.Modules, c, plan); err != nil {
		return nil, err
	}
	ex := NewExecutor(opts.Test, c, testDir, env, opts.Shell)
	return testplan.Execute(ctx, c, plan, ex)
}
