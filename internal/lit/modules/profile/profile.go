// Package profile is a test module that records a perf profile of the
// benchmark in a separate profile run, after the timed run and its metrics.
package profile

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/lit/shellcommand"
	"github.com/signalnine/benchlit/internal/lit/testplan"
)

// Params configure the module (module_params.profile in the config file).
type Params struct {
	Command string   `mapstructure:"command"`
	Events  string   `mapstructure:"events"`
	Args    []string `mapstructure:"args"`
}

type Module struct {
	Params
}

// New decodes params into a Module. Command defaults to "perf" and Events
// to "cycles".
func New(params map[string]any) (*Module, error) {
	m := &Module{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &m.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("creating params decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("decoding profile params: %w", err)
	}
	if m.Command == "" {
		m.Command = "perf"
	}
	if m.Events == "" {
		m.Events = "cycles"
	}
	return m, nil
}

// MutatePlan adds a profile script that reruns the configured run script
// (c.OriginalRunScript, or the current run script when unset) under
// `perf record`, and points c.ProfileFile at <TmpBase>.perf_data, removing
// stale data in the prepare script. The run script itself is untouched.
func (m *Module) MutatePlan(c *lit.Context, plan *lit.Plan) error {
	source := c.OriginalRunScript
	if source == nil {
		source = plan.RunScript
	}
	script, err := testplan.MutateScript(c, source, m.mutateCommandLine)
	if err != nil {
		return err
	}
	plan.ProfileScript = append(plan.ProfileScript, script...)
	c.ProfileFile = c.TmpBase + ".perf_data"
	plan.PrepareScript = append(plan.PrepareScript, "rm -f "+shellcommand.Quote(c.ProfileFile))
	return nil
}

func (m *Module) mutateCommandLine(c *lit.Context, line string) (string, error) {
	cmd, err := shellcommand.Parse(line)
	if err != nil {
		return "", err
	}
	args := []string{"record", "-e", m.Events, "-o", c.TmpBase + ".perf_data"}
	args = append(args, m.Args...)
	args = append(args, "--")
	cmd.Wrap(m.Command, args...)
	return cmd.String(), nil
}
