// Package rsbench is a test module for google-benchmark style binaries such
// as rsbench. It makes the benchmark print JSON to a file and turns every
// benchmark in that file into a micro-result of the test.
package rsbench

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/lit/shellcommand"
	"github.com/signalnine/benchlit/internal/lit/testplan"
)

// ErrStdoutRedirected is returned for benchmark command lines that already
// redirect stdout, which the module needs for the JSON report.
var ErrStdoutRedirected = errors.New("rerouting stdout not allowed for microbenchmarks")

// FormatFlag is appended to every benchmark command line.
const FormatFlag = "--benchmark_format=json"

// Benchmark fields that are not reported as metrics.
var skippedFields = map[string]bool{
	"real_time": true,
	"cpu_time":  true,
	"time_unit": true,
}

// Module is the rsbench test module.
type Module struct{}

// MutatePlan rewrites every run script line with MutateCommandLine and adds
// CollectMicrobenchmarkTime to the plan's metric collectors.
func (Module) MutatePlan(c *lit.Context, plan *lit.Plan) error {
	c.OutputFiles = []string{}
	script, err := testplan.MutateScript(c, plan.RunScript, MutateCommandLine)
	if err != nil {
		return err
	}
	plan.RunScript = script
	plan.MetricCollectors = append(plan.MetricCollectors, CollectMicrobenchmarkTime)
	return nil
}

// MutateCommandLine records the benchmarked file (the first argument) in
// c.RawFilename, asks the benchmark for JSON output and sends stdout to
// <TmpBase>.bench.json, which is added to c.OutputFiles.
func MutateCommandLine(c *lit.Context, line string) (string, error) {
	cmd, err := shellcommand.Parse(line)
	if err != nil {
		return "", err
	}
	if len(cmd.Arguments) == 0 {
		return "", fmt.Errorf("benchmark command %q has no arguments, expected the benchmarked file first", line)
	}
	c.RawFilename = cmd.Arguments[0]
	if cmd.Stdout != "" {
		return "", fmt.Errorf("%w: %q", ErrStdoutRedirected, line)
	}
	if cmd.StderrToStdout {
		return "", fmt.Errorf("benchmark command %q sends stderr into the JSON report", line)
	}

	cmd.Arguments = append(cmd.Arguments, FormatFlag)
	benchFile := c.TmpBase + ".bench.json"
	cmd.Stdout = benchFile
	c.OutputFiles = append(c.OutputFiles, benchFile)
	return cmd.String(), nil
}

type benchmarkReport struct {
	Benchmarks *[]map[string]any `json:"benchmarks"`
}

// CollectMicrobenchmarkTime reads every file in c.OutputFiles and stores a
// PASS micro-result per benchmark in c.MicroResults, keyed by the benchmark
// name without the "<RawFilename>/" prefix. Each micro-result reports
// exec_time (the benchmark's WallTime,s), profile when c.ProfileFile is set,
// and every benchmark field except real_time, cpu_time and time_unit. The
// returned metrics hold the number of micro-results as "rsbench". Any
// malformed file or entry fails the whole collection.
func CollectMicrobenchmarkTime(c *lit.Context) (map[string]lit.MetricValue, error) {
	prefix := c.RawFilename + "/"
	if c.MicroResults == nil {
		c.MicroResults = make(map[string]*lit.Result)
	}

	for _, path := range c.OutputFiles {
		data, err := c.ReadResult(path)
		if err != nil {
			return nil, fmt.Errorf("reading benchmark report: %w", err)
		}
		var report benchmarkReport
		if err := lit.DecodeJSON(data, &report); err != nil {
			return nil, fmt.Errorf("parsing benchmark report %s: %w", path, err)
		}
		if report.Benchmarks == nil {
			return nil, fmt.Errorf("benchmark report %s: missing \"benchmarks\"", path)
		}

		for i, bench := range *report.Benchmarks {
			name, ok := bench["name"].(string)
			if !ok {
				return nil, fmt.Errorf("benchmark report %s: entry %d has no string \"name\"", path, i)
			}
			if !strings.HasPrefix(name, prefix) {
				return nil, fmt.Errorf("benchmark report %s: name %q does not start with %q", path, name, prefix)
			}
			micro, err := microResult(c, bench)
			if err != nil {
				return nil, fmt.Errorf("benchmark report %s: %s: %w", path, name, err)
			}
			c.MicroResults[strings.TrimPrefix(name, prefix)] = micro
		}
	}

	return map[string]lit.MetricValue{
		"rsbench": lit.IntMetricValue(len(c.MicroResults)),
	}, nil
}

func microResult(c *lit.Context, bench map[string]any) (*lit.Result, error) {
	res := lit.NewResult(lit.Pass)

	wall, ok := bench["WallTime,s"]
	if !ok {
		return nil, fmt.Errorf("missing \"WallTime,s\"")
	}
	if err := addMetric(res, "exec_time", wall); err != nil {
		return nil, err
	}
	if c.ProfileFile != "" {
		if err := addMetric(res, "profile", c.ProfileFile); err != nil {
			return nil, err
		}
	}

	fields := make([]string, 0, len(bench))
	for field := range bench {
		if !skippedFields[field] {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := addMetric(res, field, bench[field]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func addMetric(res *lit.Result, name string, v any) error {
	mv, err := lit.ToMetricValue(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return res.AddMetric(name, mv)
}
