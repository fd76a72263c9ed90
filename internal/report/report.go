package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/result"
)

type TestSummary struct {
	Name     string         `json:"name"`
	Code     lit.ResultCode `json:"code"`
	ElapsedS float64        `json:"elapsed_s"`
	Micro    int            `json:"micro_benchmarks"`
	// ExecTimeS sums exec_time over the micro-benchmarks.
	ExecTimeS float64           `json:"exec_time_s"`
	Metrics   map[string]string `json:"metrics,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type Summary struct {
	Revision string         `json:"revision,omitempty"`
	Counts   map[string]int `json:"counts"`
	Tests    []TestSummary  `json:"tests"`
}

// Generate reads the test results of runDir and writes a report in format:
// table (default), markdown, json or lit.
func Generate(runDir, format string, w io.Writer) error {
	metas, err := result.ReadTestMetas(runDir)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		return fmt.Errorf("no test results in %s", runDir)
	}

	if format == "lit" {
		return writeLit(metas, w)
	}

	summary := summarize(metas)
	if run, err := result.ReadRunMeta(runDir); err == nil {
		summary.Revision = run.Revision
	} else {
		log.Printf("warning: %v", err)
	}

	switch format {
	case "markdown":
		return writeMarkdown(summary, w)
	case "json":
		return writeJSON(summary, w)
	default:
		return writeTable(summary, w)
	}
}

// metricFloat returns numeric metric values as float64.
func metricFloat(v lit.MetricValue) (float64, bool) {
	switch x := v.(type) {
	case lit.IntMetricValue:
		return float64(x), true
	case lit.RealMetricValue:
		return float64(x), true
	}
	return 0, false
}

func summarize(metas []*result.TestMeta) *Summary {
	s := &Summary{Counts: map[string]int{}}
	for _, m := range metas {
		ts := TestSummary{Name: m.Test, Error: m.Error, Code: lit.Unresolved}
		if r := m.Result; r != nil {
			ts.Code = r.Code
			ts.ElapsedS = r.Elapsed.Seconds()
			ts.Micro = len(r.MicroResults)
			for _, micro := range r.MicroResults {
				if f, ok := metricFloat(micro.Metrics["exec_time"]); ok {
					ts.ExecTimeS += f
				}
			}
			if len(r.Metrics) > 0 {
				ts.Metrics = make(map[string]string, len(r.Metrics))
				for name, v := range r.Metrics {
					ts.Metrics[name] = v.Format()
				}
			}
		}
		s.Counts[string(ts.Code)]++
		s.Tests = append(s.Tests, ts)
	}
	return s
}

func countsLine(s *Summary) string {
	var parts []string
	for _, code := range []lit.ResultCode{lit.Pass, lit.Fail, lit.Timeout, lit.Unresolved} {
		if n := s.Counts[string(code)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", code, n))
		}
	}
	return strings.Join(parts, ", ")
}

func writeTable(s *Summary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tCODE\tELAPSED\tMICRO\tEXEC TIME")
	fmt.Fprintln(tw, strings.Repeat("-", 64))
	for _, t := range s.Tests {
		fmt.Fprintf(tw, "%s\t%s\t%.2fs\t%d\t%.4fs\n", t.Name, t.Code, t.ElapsedS, t.Micro, t.ExecTimeS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", countsLine(s))
	return err
}

func writeMarkdown(s *Summary, w io.Writer) error {
	if s.Revision != "" {
		fmt.Fprintf(w, "Revision: `%s`\n\n", s.Revision)
	}
	fmt.Fprintln(w, "| Test | Code | Elapsed | Micro | Exec Time |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, t := range s.Tests {
		fmt.Fprintf(w, "| %s | %s | %.2fs | %d | %.4fs |\n", t.Name, t.Code, t.ElapsedS, t.Micro, t.ExecTimeS)
	}
	fmt.Fprintf(w, "\n%s\n", countsLine(s))
	return nil
}

func writeJSON(s *Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

type litTest struct {
	Name    string                     `json:"name"`
	Code    lit.ResultCode             `json:"code"`
	Output  string                     `json:"output"`
	Elapsed *float64                   `json:"elapsed"`
	Metrics map[string]lit.MetricValue `json:"metrics,omitempty"`
}

type litReport struct {
	Version []int     `json:"__version__"`
	Elapsed float64   `json:"elapsed"`
	Tests   []litTest `json:"tests"`
}

// writeLit writes results in lit's JSON output layout. Micro-benchmarks are
// reported as separate tests named "<test>:<micro>".
func writeLit(metas []*result.TestMeta, w io.Writer) error {
	rep := litReport{Version: []int{0, 1, 0}, Tests: []litTest{}}
	for _, m := range metas {
		r := m.Result
		if r == nil {
			r = lit.NewResult(lit.Unresolved)
			r.Output = m.Error
		}
		elapsed := r.Elapsed.Seconds()
		rep.Elapsed += elapsed
		rep.Tests = append(rep.Tests, litTest{
			Name:    m.Test,
			Code:    r.Code,
			Output:  r.Output,
			Elapsed: &elapsed,
			Metrics: r.Metrics,
		})
		for _, name := range r.MicroNames() {
			micro := r.MicroResults[name]
			rep.Tests = append(rep.Tests, litTest{
				Name:    m.Test + ":" + name,
				Code:    micro.Code,
				Output:  micro.Output,
				Metrics: micro.Metrics,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
