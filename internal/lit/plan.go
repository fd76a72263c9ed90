package lit

// MetricCollector extracts metrics after a test plan has run.
type MetricCollector func(c *Context) (map[string]MetricValue, error)

// Plan is the sequence of shell scripts making up a test, plus the
// collectors that turn the run's artifacts into metrics. ProfileScript runs
// after the collectors so that profiling overhead never reaches the timed
// run.
type Plan struct {
	PrepareScript    []string
	RunScript        []string
	VerifyScript     []string
	MetricCollectors []MetricCollector
	ProfileScript    []string
}
