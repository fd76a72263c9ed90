package lit

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type ResultCode string

const (
	Pass       ResultCode = "PASS"
	Fail       ResultCode = "FAIL"
	Timeout    ResultCode = "TIMEOUT"
	Unresolved ResultCode = "UNRESOLVED"
)

// Result is the outcome of a test or of one micro-benchmark within it.
type Result struct {
	Code         ResultCode
	Output       string
	Elapsed      time.Duration
	Metrics      map[string]MetricValue
	MicroResults map[string]*Result
}

func NewResult(code ResultCode) *Result {
	return &Result{Code: code, Metrics: make(map[string]MetricValue)}
}

// AddMetric records a metric. A metric can only be reported once.
func (r *Result) AddMetric(name string, v MetricValue) error {
	if r.Metrics == nil {
		r.Metrics = make(map[string]MetricValue)
	}
	if _, exists := r.Metrics[name]; exists {
		return fmt.Errorf("result already includes metric %q", name)
	}
	r.Metrics[name] = v
	return nil
}

// MetricNames returns the metric names, sorted.
func (r *Result) MetricNames() []string {
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MicroNames returns the micro-result names, sorted.
func (r *Result) MicroNames() []string {
	names := make([]string, 0, len(r.MicroResults))
	for name := range r.MicroResults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type resultJSON struct {
	Code         ResultCode                 `json:"code"`
	Output       string                     `json:"output,omitempty"`
	Elapsed      float64                    `json:"elapsed"`
	Metrics      map[string]json.RawMessage `json:"metrics,omitempty"`
	MicroResults map[string]*Result         `json:"micro_results,omitempty"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Code:         r.Code,
		Output:       r.Output,
		Elapsed:      r.Elapsed.Seconds(),
		MicroResults: r.MicroResults,
	}
	if len(r.Metrics) > 0 {
		out.Metrics = make(map[string]json.RawMessage, len(r.Metrics))
		for name, v := range r.Metrics {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encoding metric %s: %w", name, err)
			}
			out.Metrics[name] = data
		}
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Code = in.Code
	r.Output = in.Output
	r.Elapsed = time.Duration(in.Elapsed * float64(time.Second))
	r.MicroResults = in.MicroResults
	r.Metrics = make(map[string]MetricValue, len(in.Metrics))
	for name, raw := range in.Metrics {
		var v any
		if err := DecodeJSON(raw, &v); err != nil {
			return fmt.Errorf("decoding metric %s: %w", name, err)
		}
		mv, err := ToMetricValue(v)
		if err != nil {
			return fmt.Errorf("decoding metric %s: %w", name, err)
		}
		r.Metrics[name] = mv
	}
	return nil
}
