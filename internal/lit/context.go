// Package lit holds the test model shared by the test plan executor and the
// test modules: per-test context, plans, results and metric values.
package lit

import "os"

// Context is the per-test state threaded through plan mutation, execution
// and metric collection. It is owned by a single test run.
type Context struct {
	// Name of the test.
	Name string
	// TmpBase is the path prefix for files the test produces.
	TmpBase string
	// RawFilename is the first argument of the benchmarked command line.
	RawFilename string
	// OutputFiles lists the benchmark JSON files the run script writes.
	OutputFiles []string
	// MicroResults holds one result per collected micro-benchmark.
	MicroResults map[string]*Result
	// OriginalRunScript is the run script as configured, before any module
	// mutated it.
	OriginalRunScript []string
	// ProfileFile is set when the test is being profiled.
	ProfileFile string
	// ReadResultFile reads a file produced by the test. Nil reads the local
	// file system.
	ReadResultFile func(c *Context, path string) ([]byte, error)
}

func NewContext(name, tmpBase string) *Context {
	return &Context{
		Name:         name,
		TmpBase:      tmpBase,
		MicroResults: make(map[string]*Result),
	}
}

// ReadResult reads path through ReadResultFile.
func (c *Context) ReadResult(path string) ([]byte, error) {
	if c.ReadResultFile != nil {
		return c.ReadResultFile(c, path)
	}
	return os.ReadFile(path)
}
