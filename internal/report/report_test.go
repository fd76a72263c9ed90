package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/report"
	"github.com/signalnine/benchlit/internal/result"
)

func writeRun(t *testing.T) string {
	t.Helper()
	runDir := t.TempDir()

	decode := lit.NewResult(lit.Pass)
	decode.Elapsed = 2 * time.Second
	decode.AddMetric("rsbench", lit.IntMetricValue(2))
	for name, wall := range map[string]float64{"threads:1": 0.5, "threads:2": 0.25} {
		micro := lit.NewResult(lit.Pass)
		micro.AddMetric("exec_time", lit.RealMetricValue(wall))
		if decode.MicroResults == nil {
			decode.MicroResults = map[string]*lit.Result{}
		}
		decode.MicroResults[name] = micro
	}
	failed := lit.NewResult(lit.Fail)
	failed.Output = "run script exited with status 1\n"

	metas := []*result.TestMeta{
		{Test: "decode", Modules: []string{"rsbench"}, Result: decode},
		{Test: "broken", Result: failed},
		{Test: "redirected", Error: "rerouting stdout not allowed for microbenchmarks"},
	}
	for _, m := range metas {
		if err := result.WriteTestMeta(result.TestDir(runDir, m.Test), m); err != nil {
			t.Fatalf("WriteTestMeta: %v", err)
		}
	}
	if err := result.WriteRunMeta(runDir, &result.RunMeta{Revision: "abc123", Tests: []string{"decode", "broken", "redirected"}}); err != nil {
		t.Fatalf("WriteRunMeta: %v", err)
	}
	return runDir
}

func TestGenerateTable(t *testing.T) {
	runDir := writeRun(t)
	var buf bytes.Buffer
	if err := report.Generate(runDir, "table", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"decode", "broken", "UNRESOLVED", "0.7500s", "PASS: 1, FAIL: 1, UNRESOLVED: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateMarkdown(t *testing.T) {
	runDir := writeRun(t)
	var buf bytes.Buffer
	if err := report.Generate(runDir, "markdown", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Revision: `abc123`") {
		t.Errorf("missing revision:\n%s", out)
	}
	if !strings.Contains(out, "| decode | PASS | 2.00s | 2 | 0.7500s |") {
		t.Errorf("missing decode row:\n%s", out)
	}
}

func TestGenerateJSON(t *testing.T) {
	runDir := writeRun(t)
	var buf bytes.Buffer
	if err := report.Generate(runDir, "json", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var s report.Summary
	if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(s.Tests) != 3 || s.Counts["PASS"] != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	for _, ts := range s.Tests {
		if ts.Name == "decode" && (ts.Micro != 2 || ts.Metrics["rsbench"] != "2") {
			t.Errorf("decode summary: %+v", ts)
		}
		if ts.Name == "redirected" && (ts.Code != lit.Unresolved || ts.Error == "") {
			t.Errorf("redirected summary: %+v", ts)
		}
	}
}

func TestGenerateLit(t *testing.T) {
	runDir := writeRun(t)
	var buf bytes.Buffer
	if err := report.Generate(runDir, "lit", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var rep struct {
		Tests []struct {
			Name    string             `json:"name"`
			Code    string             `json:"code"`
			Elapsed *float64           `json:"elapsed"`
			Metrics map[string]float64 `json:"metrics"`
		} `json:"tests"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	names := make([]string, len(rep.Tests))
	for i, tt := range rep.Tests {
		names[i] = tt.Name
	}
	want := "broken,decode,decode:threads:1,decode:threads:2,redirected"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("tests: got %s, want %s", got, want)
	}
	micro := rep.Tests[2]
	if micro.Code != "PASS" || micro.Metrics["exec_time"] != 0.5 || micro.Elapsed != nil {
		t.Errorf("micro entry: %+v", micro)
	}
	if rep.Tests[4].Code != "UNRESOLVED" {
		t.Errorf("redirected: got %s", rep.Tests[4].Code)
	}
}

func TestGenerateEmpty(t *testing.T) {
	if err := report.Generate(t.TempDir(), "table", &bytes.Buffer{}); err == nil {
		t.Error("expected error for run without results")
	}
}
