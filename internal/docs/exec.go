package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/signalnine/benchlit/internal/capture"
	"github.com/signalnine/benchlit/internal/snippet"
)

// ExecDirective evaluates its content as a code snippet and parses whatever
// the snippet prints (stdout, then stderr) as markup in place of the
// directive. The optional single-word argument selects the snippet
// language; snippet code must go in the indented body.
type ExecDirective struct {
	Evaluators *snippet.Registry
	// Language is used when the directive has no argument. Defaults to "sh".
	Language string
}

func (d *ExecDirective) Run(ctx context.Context, st *State, inv *Invocation) error {
	if len(inv.Options) > 0 {
		names := make([]string, 0, len(inv.Options))
		for name := range inv.Options {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("%s:%d: exec: unknown option %q", st.Source(), inv.Line, names[0])
	}

	args := strings.Fields(inv.Args)
	if len(args) > 1 {
		return fmt.Errorf("%s:%d: exec: expected at most one language argument, got %q", st.Source(), inv.Line, inv.Args)
	}
	var lang string
	if len(args) == 1 {
		lang = args[0]
	}
	if lang == "" {
		lang = d.Language
	}
	if lang == "" {
		lang = "sh"
	}
	ev, err := d.Evaluators.Get(lang)
	if err != nil {
		return fmt.Errorf("%s:%d: exec: %w", st.Source(), inv.Line, err)
	}

	src := strings.Join(inv.Content, "\n")
	out, err := capture.Run(func() error {
		return ev.Eval(ctx, src)
	})
	if err != nil {
		return fmt.Errorf("%s:%d: exec: %w", st.Source(), inv.Line, err)
	}
	return st.InsertLines(ctx, SplitLines(out.Combined(), st.TabWidth()))
}
