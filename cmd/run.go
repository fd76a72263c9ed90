package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalnine/benchlit/internal/config"
	"github.com/signalnine/benchlit/internal/gitops"
	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/report"
	"github.com/signalnine/benchlit/internal/result"
	"github.com/signalnine/benchlit/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagTest     string
	flagParallel int
	flagModules  string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured tests",
		RunE:  runTests,
	}
	cmd.Flags().StringVar(&flagTest, "test", "", "run only tests matching this name (suffix * matches a prefix)")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent tests (overrides config)")
	cmd.Flags().StringVar(&flagModules, "modules", "", "comma-separated test modules for every test (overrides config)")
	return cmd
}

func runTests(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagParallel > 0 {
		cfg.Parallel = flagParallel
	}
	tests := filterTests(cfg.Tests, flagTest)
	if len(tests) == 0 {
		return fmt.Errorf("no tests match %q", flagTest)
	}
	if flagModules != "" {
		mods := splitList(flagModules)
		for i := range tests {
			tests[i].Modules = mods
		}
	}

	reg, err := runner.LoadModules(cfg.ModuleParams)
	if err != nil {
		return err
	}
	var env map[string]string
	if cfg.EnvFile != "" {
		env, err = config.LoadEnvFile(cfg.EnvFile)
		if err != nil {
			return err
		}
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	runMeta := &result.RunMeta{StartedAt: time.Now().UTC(), Config: cfgFile}
	if rev, err := gitops.Revision(filepath.Dir(cfgFile)); err == nil {
		runMeta.Revision = rev
	}
	for _, t := range tests {
		runMeta.Tests = append(runMeta.Tests, t.Name)
	}
	if err := result.WriteRunMeta(runDir, runMeta); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var jobs []runner.Job
	for i := range tests {
		t := &tests[i]
		jobs = append(jobs, runner.Job{Name: t.Name, Run: func(ctx context.Context) error {
			fmt.Printf("Running %s...\n", t.Name)
			meta, err := runner.RunTest(ctx, &runner.TestOpts{
				Test:    t,
				Modules: reg,
				RunDir:  runDir,
				Env:     env,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			fmt.Printf("  %s: %s (%.2fs, %d micro-benchmarks)\n",
				t.Name, meta.Result.Code, meta.Result.Elapsed.Seconds(), len(meta.Result.MicroResults))
			if meta.Result.Code != lit.Pass {
				return fmt.Errorf("%s: %s", t.Name, meta.Result.Code)
			}
			return nil
		}})
	}
	errs := runner.RunPool(ctx, cfg.Parallel, jobs)
	for _, err := range errs {
		log.Printf("  ERROR: %v", err)
	}

	fmt.Println("\n--- Results ---")
	if err := report.Generate(runDir, "table", os.Stdout); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d tests did not pass", len(errs), len(tests))
	}
	return nil
}

func filterTests(tests []config.Test, pattern string) []config.Test {
	if pattern == "" {
		return tests
	}
	var filtered []config.Test
	for _, t := range tests {
		if matchName(t.Name, pattern) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return name == pattern
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
