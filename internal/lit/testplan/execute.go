package testplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signalnine/benchlit/internal/lit"
)

type phase struct {
	name  string
	lines []string
}

// Execute runs the prepare, run and verify scripts of plan in order. A
// script that times out yields TIMEOUT and one that exits non-zero yields
// FAIL; in both cases the metric collectors are skipped. Otherwise every
// collector runs and its metrics are merged into the PASS result, later
// collectors overriding earlier ones. The profile script runs last and can
// still turn the result into FAIL or TIMEOUT. Executor and collector
// failures are returned as errors.
func Execute(ctx context.Context, c *lit.Context, plan *lit.Plan, ex Executor) (*lit.Result, error) {
	start := time.Now()
	res := lit.NewResult(lit.Pass)
	var output strings.Builder
	finish := func(code lit.ResultCode) *lit.Result {
		res.Code = code
		res.Output = output.String()
		res.Elapsed = time.Since(start)
		return res
	}

	phases := []phase{
		{"prepare", plan.PrepareScript},
		{"run", plan.RunScript},
		{"verify", plan.VerifyScript},
	}
	for _, ph := range phases {
		code, err := runPhase(ctx, ex, ph, &output)
		if err != nil {
			return nil, err
		}
		if code != lit.Pass {
			return finish(code), nil
		}
	}

	for _, collect := range plan.MetricCollectors {
		metrics, err := collect(c)
		if err != nil {
			return nil, fmt.Errorf("collecting metrics for %s: %w", c.Name, err)
		}
		for name, v := range metrics {
			res.Metrics[name] = v
		}
	}
	if len(c.MicroResults) > 0 {
		res.MicroResults = c.MicroResults
	}

	code, err := runPhase(ctx, ex, phase{"profile", plan.ProfileScript}, &output)
	if err != nil {
		return nil, err
	}
	return finish(code), nil
}

func runPhase(ctx context.Context, ex Executor, ph phase, output *strings.Builder) (lit.ResultCode, error) {
	if len(ph.lines) == 0 {
		return lit.Pass, nil
	}
	out, err := ex.Exec(ctx, ph.name, ph.lines)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(output, "# %s\n%s", ph.name, out.Output)
	if out.TimedOut {
		fmt.Fprintf(output, "%s script timed out after %s\n", ph.name, out.Duration.Round(time.Second))
		return lit.Timeout, nil
	}
	if out.ExitCode != 0 {
		fmt.Fprintf(output, "%s script exited with status %d\n", ph.name, out.ExitCode)
		return lit.Fail, nil
	}
	return lit.Pass, nil
}
